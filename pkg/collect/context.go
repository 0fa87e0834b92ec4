package collect

import (
	"context"
	"path"
	"strings"

	"github.com/go-logr/logr"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"github.com/replicatedhq/pulsar-diag/pkg/transport"
)

// PulsarPaths locates the Pulsar installation inside every unit.
type PulsarPaths struct {
	Home string
	// LogDir overrides <Home>/logs when set
	LogDir string
}

func DefaultPulsarPaths() PulsarPaths {
	return PulsarPaths{Home: constants.DefaultPulsarHome}
}

func (p PulsarPaths) home() string {
	if p.Home == "" {
		return constants.DefaultPulsarHome
	}
	return p.Home
}

func (p PulsarPaths) Admin() string {
	return path.Join(p.home(), "bin", "pulsar-admin")
}

func (p PulsarPaths) ConfDir() string {
	return path.Join(p.home(), "conf")
}

func (p PulsarPaths) Logs() string {
	if p.LogDir != "" {
		return p.LogDir
	}
	return path.Join(p.home(), "logs")
}

// Context is shared by every collector of a run.
type Context struct {
	Runtime transport.Runtime
	Tree    *OutputTree
	Errors  *ErrorRecorder
	Log     logr.Logger
	Paths   PulsarPaths

	units map[string]transport.Unit
}

func NewContext(rt transport.Runtime, tree *OutputTree, errs *ErrorRecorder, log logr.Logger, paths PulsarPaths, units []transport.Unit) *Context {
	c := &Context{
		Runtime: rt,
		Tree:    tree,
		Errors:  errs,
		Log:     log,
		Paths:   paths,
		units:   map[string]transport.Unit{},
	}
	for _, unit := range units {
		c.units[unit.Name] = unit
	}
	return c
}

// Unit returns the enumerated unit called name. Names that were not enumerated, such as an
// admin unit given on the command line, are addressed by name.
func (c *Context) Unit(name string) transport.Unit {
	if unit, ok := c.units[name]; ok {
		return unit
	}
	return transport.Unit{Name: name, ID: name, Status: transport.StatusRunning}
}

// admin runs pulsar-admin on target and returns its stdout.
func (c *Context) admin(ctx context.Context, target transport.Unit, args ...string) (string, error) {
	argv := append([]string{c.Paths.Admin()}, args...)
	c.Log.V(2).Info("running pulsar-admin", "unit", target.Name, "args", strings.Join(args, " "))

	stdout, _, err := c.Runtime.Exec(ctx, target, argv)
	if err != nil {
		return "", err
	}
	return string(stdout), nil
}

// outputLines splits command output into trimmed, non-empty lines.
func outputLines(out string) []string {
	lines := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// foldLines joins multi-line output into a single line separated by spaces.
func foldLines(out string) string {
	return strings.Join(outputLines(out), " ")
}
