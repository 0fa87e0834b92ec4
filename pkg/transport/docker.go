package transport

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// dockerAPI is the subset of the Docker Engine client used for collection.
type dockerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerExecCreate(ctx context.Context, container string, config types.ExecConfig) (types.IDResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, config types.ExecStartCheck) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (types.ContainerExecInspect, error)
	ContainerInspectWithRaw(ctx context.Context, container string, getSize bool) (types.ContainerJSON, []byte, error)
	ContainerLogs(ctx context.Context, container string, options container.LogsOptions) (io.ReadCloser, error)
	CopyFromContainer(ctx context.Context, container, srcPath string) (io.ReadCloser, types.ContainerPathStat, error)
}

// Docker executes against containers of the local Docker Engine.
type Docker struct {
	// Filter restricts enumeration to containers whose name contains it (case-insensitive)
	Filter string

	api dockerAPI
}

func NewDocker(filter string) (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker api client")
	}
	return &Docker{Filter: filter, api: cli}, nil
}

func (d *Docker) ListUnits(ctx context.Context) ([]Unit, error) {
	options := container.ListOptions{All: true}
	// the daemon treats the name filter as a regular expression, globs are matched here only
	if d.Filter != "" && !strings.ContainsAny(d.Filter, "*?[{") {
		options.Filters = filters.NewArgs(filters.Arg("name", d.Filter))
	}

	containers, err := d.api.ContainerList(ctx, options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list containers")
	}

	units := []Unit{}
	for _, c := range containers {
		name := containerName(c)
		if !matchesFilter(name, d.Filter) {
			continue
		}
		status := StatusOther
		if c.State == "running" {
			status = StatusRunning
		}
		units = append(units, Unit{Name: name, ID: c.ID, Status: status})
	}
	return units, nil
}

func (d *Docker) Exec(ctx context.Context, unit Unit, argv []string) ([]byte, []byte, error) {
	execID, err := d.api.ContainerExecCreate(ctx, unit.handle(), types.ExecConfig{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create exec in container %s", unit.Name)
	}

	resp, err := d.api.ContainerExecAttach(ctx, execID.ID, types.ExecStartCheck{})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to attach to exec in container %s", unit.Name)
	}
	defer resp.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, resp.Reader); err != nil {
		return stdout.Bytes(), stderr.Bytes(), errors.Wrap(err, "failed to read exec output")
	}

	inspect, err := d.api.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return stdout.Bytes(), stderr.Bytes(), errors.Wrap(err, "failed to inspect exec")
	}
	if inspect.ExitCode != 0 {
		return stdout.Bytes(), stderr.Bytes(), &ExitError{Command: argv, ExitCode: inspect.ExitCode, Stderr: stderr.Bytes()}
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// Copy uses the archive endpoint, which returns remotePath as a tar stream rooted at its base name.
func (d *Docker) Copy(ctx context.Context, unit Unit, remotePath string, localDir string) error {
	reader, _, err := d.api.CopyFromContainer(ctx, unit.handle(), path.Clean(remotePath))
	if err != nil {
		return errors.Wrapf(err, "failed to copy %s from container %s", remotePath, unit.Name)
	}
	defer reader.Close()

	if err := extractTar(reader, localDir); err != nil {
		return errors.Wrapf(err, "failed to extract %s from container %s", remotePath, unit.Name)
	}
	return nil
}

func (d *Docker) Logs(ctx context.Context, unit Unit, w io.Writer) error {
	info, _, err := d.api.ContainerInspectWithRaw(ctx, unit.handle(), false)
	if err != nil {
		return errors.Wrapf(err, "failed to inspect container %s", unit.Name)
	}

	logs, err := d.api.ContainerLogs(ctx, unit.handle(), container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return errors.Wrapf(err, "failed to retrieve logs of container %s", unit.Name)
	}
	defer logs.Close()

	// containers with a TTY are not multiplexed
	if info.Config != nil && info.Config.Tty {
		_, err = io.Copy(w, logs)
	} else {
		_, err = stdcopy.StdCopy(w, w, logs)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to copy logs of container %s", unit.Name)
	}
	return nil
}

func (d *Docker) Describe(ctx context.Context, unit Unit) ([]byte, error) {
	_, raw, err := d.api.ContainerInspectWithRaw(ctx, unit.handle(), false)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to inspect container %s", unit.Name)
	}

	b, err := yaml.JSONToYAML(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert container inspect to yaml")
	}
	return b, nil
}

func containerName(c types.Container) string {
	if len(c.Names) == 0 {
		return c.ID
	}
	return strings.TrimPrefix(c.Names[0], "/")
}
