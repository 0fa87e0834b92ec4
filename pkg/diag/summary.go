package diag

import (
	"time"

	"github.com/replicatedhq/pulsar-diag/pkg/collect"
)

// Summary describes a finished run.
type Summary struct {
	RunID       string                    `json:"runId"`
	Topology    Topology                  `json:"topology"`
	Namespace   string                    `json:"namespace,omitempty"`
	OutputDir   string                    `json:"outputDir"`
	AdminTarget string                    `json:"adminTarget,omitempty"`
	Units       int                       `json:"units"`
	Files       []string                  `json:"files"`
	Archive     string                    `json:"archive,omitempty"`
	StartedAt   time.Time                 `json:"startedAt"`
	FinishedAt  time.Time                 `json:"finishedAt"`
	Errors      []collect.CollectionError `json:"errors,omitempty"`

	err error
}

// Err aggregates the failures recorded during the run. They never fail the run itself.
func (s *Summary) Err() error {
	return s.err
}
