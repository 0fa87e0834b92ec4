package transport

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	osutils "github.com/shirou/gopsutil/v3/host"
	"sigs.k8s.io/yaml"
)

const StandaloneUnitName = "standalone"

// Local runs against a Pulsar standalone process on this host. It exposes a single unit.
type Local struct {
	// LogDir holds the standalone process log files
	LogDir string
}

func NewLocal(logDir string) *Local {
	return &Local{LogDir: logDir}
}

func (l *Local) ListUnits(ctx context.Context) ([]Unit, error) {
	return []Unit{{Name: StandaloneUnitName, ID: StandaloneUnitName, Status: StatusRunning}}, nil
}

func (l *Local) Exec(ctx context.Context, unit Unit, argv []string) ([]byte, []byte, error) {
	if len(argv) == 0 {
		return nil, nil, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), &ExitError{Command: argv, ExitCode: exitErr.ExitCode(), Stderr: stderr.Bytes()}
		}
		return stdout.Bytes(), stderr.Bytes(), errors.Wrapf(err, "failed to run %s", argv[0])
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func (l *Local) Copy(ctx context.Context, unit Unit, remotePath string, localDir string) error {
	src := filepath.Clean(remotePath)
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", src)
	}

	dst := filepath.Join(localDir, filepath.Base(src))
	if !info.IsDir() {
		return copyLocalFile(src, dst)
	}

	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return errors.Wrap(err, "relative path")
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0777)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyLocalFile(p, target)
	})
}

// Logs concatenates the *.log files of the log directory in name order.
func (l *Local) Logs(ctx context.Context, unit Unit, w io.Writer) error {
	matches, err := filepath.Glob(filepath.Join(l.LogDir, "*.log"))
	if err != nil {
		return errors.Wrap(err, "failed to list log files")
	}
	if len(matches) == 0 {
		return errors.Errorf("no log files found in %s", l.LogDir)
	}
	sort.Strings(matches)

	for _, match := range matches {
		f, err := os.Open(match)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", match)
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", match)
		}
	}
	return nil
}

type hostDescription struct {
	Name            string `json:"name"`
	Hostname        string `json:"hostname,omitempty"`
	OS              string `json:"os"`
	Arch            string `json:"arch"`
	NumCPU          int    `json:"numCPU"`
	LogDir          string `json:"logDir"`
	KernelVersion   string `json:"kernelVersion,omitempty"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platformVersion,omitempty"`
	Uptime          uint64 `json:"uptime,omitempty"`
}

func (l *Local) Describe(ctx context.Context, unit Unit) ([]byte, error) {
	hostname, _ := os.Hostname()
	description := hostDescription{
		Name:     unit.Name,
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		NumCPU:   runtime.NumCPU(),
		LogDir:   l.LogDir,
	}
	// host info is best effort, some fields are not readable in containers
	if info, err := osutils.InfoWithContext(ctx); err == nil {
		description.KernelVersion = info.KernelVersion
		description.Platform = info.Platform
		description.PlatformVersion = info.PlatformVersion
		description.Uptime = info.Uptime
	}

	b, err := yaml.Marshal(description)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal host description")
	}
	return b, nil
}

func copyLocalFile(src string, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer f.Close()

	return writeFile(dst, f)
}
