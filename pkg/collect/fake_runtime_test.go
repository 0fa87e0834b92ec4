package collect

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/transport"
)

// fakeRuntime serves canned responses keyed by unit name.
type fakeRuntime struct {
	units []transport.Unit
	// logs and describe output per unit, a missing unit fails
	logs     map[string]string
	describe map[string]string
	// files maps "<unit>:<remote path>" to content. A remote path ending in "logs"
	// is copied as a directory holding pulsar.log.
	files map[string]string
	// admin maps pulsar-admin arguments to stdout, a missing entry exits 1
	admin map[string]string

	mu    sync.Mutex
	calls []string
}

func (f *fakeRuntime) ListUnits(ctx context.Context) ([]transport.Unit, error) {
	return f.units, nil
}

func (f *fakeRuntime) Exec(ctx context.Context, unit transport.Unit, argv []string) ([]byte, []byte, error) {
	args := strings.Join(argv[1:], " ")
	f.mu.Lock()
	f.calls = append(f.calls, unit.Name+": "+args)
	f.mu.Unlock()

	if argv[0] != "/pulsar/bin/pulsar-admin" {
		return nil, nil, errors.Errorf("unexpected binary %s", argv[0])
	}
	out, ok := f.admin[args]
	if !ok {
		return nil, []byte("not found"), &transport.ExitError{Command: argv, ExitCode: 1, Stderr: []byte("not found")}
	}
	return []byte(out), nil, nil
}

func (f *fakeRuntime) Copy(ctx context.Context, unit transport.Unit, remotePath string, localDir string) error {
	content, ok := f.files[unit.Name+":"+remotePath]
	if !ok {
		return errors.Errorf("%s: no such file or directory", remotePath)
	}
	target := filepath.Join(localDir, path.Base(remotePath))
	if path.Base(remotePath) == "logs" {
		target = filepath.Join(target, "pulsar.log")
	}
	if err := os.MkdirAll(filepath.Dir(target), 0777); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(content), 0644)
}

func (f *fakeRuntime) Logs(ctx context.Context, unit transport.Unit, w io.Writer) error {
	out, ok := f.logs[unit.Name]
	if !ok {
		return errors.Errorf("pod %s not found", unit.Name)
	}
	_, err := io.WriteString(w, out)
	return err
}

func (f *fakeRuntime) Describe(ctx context.Context, unit transport.Unit) ([]byte, error) {
	out, ok := f.describe[unit.Name]
	if !ok {
		return nil, errors.Errorf("pod %s not found", unit.Name)
	}
	return []byte(out), nil
}

func (f *fakeRuntime) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func running(names ...string) []transport.Unit {
	units := []transport.Unit{}
	for _, name := range names {
		units = append(units, transport.Unit{Name: name, ID: name, Status: transport.StatusRunning})
	}
	return units
}

func newTestContext(t *testing.T, rt *fakeRuntime) *Context {
	t.Helper()
	tree := NewOutputTree(t.TempDir())
	return NewContext(rt, tree, NewErrorRecorder(logr.Discard()), logr.Discard(), DefaultPulsarPaths(), rt.units)
}

func readOutput(t *testing.T, c *Context, relativePath string) string {
	t.Helper()
	b, err := os.ReadFile(c.Tree.Path(relativePath))
	if err != nil {
		t.Fatalf("read %s: %v", relativePath, err)
	}
	return string(b)
}

func fileExists(c *Context, relativePath string) bool {
	_, err := os.Stat(c.Tree.Path(relativePath))
	return err == nil
}
