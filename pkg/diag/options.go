package diag

import (
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/transport"
)

type Topology string

const (
	TopologyDocker     Topology = "docker"
	TopologyKube       Topology = "kube"
	TopologyStandalone Topology = "standalone"
)

var Topologies = []Topology{TopologyDocker, TopologyKube, TopologyStandalone}

var (
	ErrInvalidTopology = errors.New("invalid topology")
	ErrSetup           = errors.New("setup failed")
)

func ParseTopology(s string) (Topology, error) {
	for _, t := range Topologies {
		if Topology(strings.ToLower(strings.TrimSpace(s))) == t {
			return t, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidTopology, "%q, must be one of docker, kube, standalone", s)
}

type Options struct {
	Topology string
	// Namespace is the Kubernetes namespace of the kube topology
	Namespace string
	// OutputDir is where results are written, see ResolveOutputDir
	OutputDir string
	// Filter restricts the enumerated units by name. The docker topology defaults to "pulsar".
	Filter string
	// AdminUnit replaces admin target resolution when set
	AdminUnit   string
	PulsarHome  string
	LogDir      string
	Parallelism int
	// Timeout bounds every call made to a unit, zero means no limit
	Timeout time.Duration
	// Archive writes <OutputDir>.tar.gz once collection finishes
	Archive bool

	Log logr.Logger

	// Runtime is used instead of the runtime built for Topology
	Runtime transport.Runtime
}

// setupError marks failures that prevent a run from starting.
type setupError struct {
	cause error
}

func (e setupError) Error() string {
	return e.cause.Error()
}

func (e setupError) Unwrap() error {
	return e.cause
}

func (e setupError) Is(target error) bool {
	return target == ErrSetup
}

func newSetupError(err error, message string) error {
	return setupError{cause: errors.Wrap(err, message)}
}
