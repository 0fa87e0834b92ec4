package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type Status string

const (
	StatusRunning Status = "Running"
	StatusOther   Status = "Other"
)

// Unit is a single running pod, container or local process of the cluster.
type Unit struct {
	// Name is unique within the enumerated scope and is used for output paths
	Name   string
	Status Status
	// ID is the backend handle. It equals Name unless the backend has its own identifiers
	ID string
}

func (u Unit) IsRunning() bool {
	return u.Status == StatusRunning
}

func (u Unit) handle() string {
	if u.ID != "" {
		return u.ID
	}
	return u.Name
}

// Runtime is implemented by every execution backend.
type Runtime interface {
	// ListUnits returns units in discovery order.
	ListUnits(ctx context.Context) ([]Unit, error)
	// Exec runs argv inside the unit. A non-zero exit status is returned as *ExitError.
	Exec(ctx context.Context, unit Unit, argv []string) ([]byte, []byte, error)
	// Copy copies remotePath (a file or a directory) from the unit into localDir,
	// keeping its base name.
	Copy(ctx context.Context, unit Unit, remotePath string, localDir string) error
	// Logs writes the combined log stream of every container in the unit to w.
	Logs(ctx context.Context, unit Unit, w io.Writer) error
	// Describe returns the backend's native description of the unit as YAML.
	Describe(ctx context.Context, unit Unit) ([]byte, error)
}

type ExitError struct {
	Command  []string
	ExitCode int
	Stderr   []byte
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", strings.Join(e.Command, " "), e.ExitCode)
	if stderr := strings.TrimSpace(string(e.Stderr)); stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, stderr)
	}
	return msg
}

const tarLeadingSlashWarning = "Removing leading '/'"

// stderrIsBenign reports whether stderr carries nothing worth reporting. tar prints a
// warning about absolute member names that does not affect the copy.
func stderrIsBenign(stderr []byte) bool {
	for _, line := range strings.Split(string(stderr), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, tarLeadingSlashWarning) {
			continue
		}
		return false
	}
	return true
}
