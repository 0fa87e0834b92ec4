package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDockerAPI struct {
	containers []types.Container
	listOpts   container.ListOptions

	execCmd    []string
	execStdout string
	execStderr string
	exitCode   int

	tty     bool
	logs    []byte
	inspect []byte
	archive []byte
}

func (f *fakeDockerAPI) ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error) {
	f.listOpts = options
	return f.containers, nil
}

func (f *fakeDockerAPI) ContainerExecCreate(ctx context.Context, c string, config types.ExecConfig) (types.IDResponse, error) {
	f.execCmd = config.Cmd
	return types.IDResponse{ID: "exec-1"}, nil
}

func (f *fakeDockerAPI) ContainerExecAttach(ctx context.Context, execID string, config types.ExecStartCheck) (types.HijackedResponse, error) {
	var buf bytes.Buffer
	stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(f.execStdout))
	stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(f.execStderr))

	conn, _ := net.Pipe()
	return types.HijackedResponse{Conn: conn, Reader: bufio.NewReader(&buf)}, nil
}

func (f *fakeDockerAPI) ContainerExecInspect(ctx context.Context, execID string) (types.ContainerExecInspect, error) {
	return types.ContainerExecInspect{ExecID: execID, ExitCode: f.exitCode}, nil
}

func (f *fakeDockerAPI) ContainerInspectWithRaw(ctx context.Context, c string, getSize bool) (types.ContainerJSON, []byte, error) {
	if c == "missing" {
		return types.ContainerJSON{}, nil, errors.New("No such container: missing")
	}
	info := types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{ID: c},
		Config:            &container.Config{Tty: f.tty},
	}
	return info, f.inspect, nil
}

func (f *fakeDockerAPI) ContainerLogs(ctx context.Context, c string, options container.LogsOptions) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.logs)), nil
}

func (f *fakeDockerAPI) CopyFromContainer(ctx context.Context, c, srcPath string) (io.ReadCloser, types.ContainerPathStat, error) {
	return io.NopCloser(bytes.NewReader(f.archive)), types.ContainerPathStat{Name: filepath.Base(srcPath)}, nil
}

func TestDocker_ListUnits(t *testing.T) {
	api := &fakeDockerAPI{
		containers: []types.Container{
			{ID: "aaa", Names: []string{"/pulsar-broker"}, State: "running"},
			{ID: "bbb", Names: []string{"/pulsar-zookeeper"}, State: "exited"},
			{ID: "ccc", Names: []string{"/my-pulsar-proxy"}, State: "running"},
			{ID: "ddd", Names: []string{"/unrelated"}, State: "running"},
		},
	}
	d := &Docker{Filter: "pulsar", api: api}

	units, err := d.ListUnits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Unit{
		{Name: "pulsar-broker", ID: "aaa", Status: StatusRunning},
		{Name: "pulsar-zookeeper", ID: "bbb", Status: StatusOther},
		{Name: "my-pulsar-proxy", ID: "ccc", Status: StatusRunning},
	}, units)
	assert.True(t, api.listOpts.All)
	assert.Equal(t, []string{"pulsar"}, api.listOpts.Filters.Get("name"))
}

func TestDocker_Exec(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		wantErr  bool
	}{
		{name: "success", exitCode: 0},
		{name: "non-zero exit", exitCode: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeDockerAPI{execStdout: "public\n", execStderr: "warn\n", exitCode: tt.exitCode}
			d := &Docker{api: api}

			stdout, stderr, err := d.Exec(context.Background(), Unit{Name: "pulsar-broker", ID: "aaa"}, []string{"/pulsar/bin/pulsar-admin", "tenants", "list"})
			assert.Equal(t, "public\n", string(stdout))
			assert.Equal(t, "warn\n", string(stderr))
			assert.Equal(t, []string{"/pulsar/bin/pulsar-admin", "tenants", "list"}, api.execCmd)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tt.exitCode, exitErr.ExitCode)
		})
	}
}

func TestDocker_Logs(t *testing.T) {
	var multiplexed bytes.Buffer
	stdcopy.NewStdWriter(&multiplexed, stdcopy.Stdout).Write([]byte("out "))
	stdcopy.NewStdWriter(&multiplexed, stdcopy.Stderr).Write([]byte("err"))

	tests := []struct {
		name string
		tty  bool
		logs []byte
		want string
	}{
		{name: "multiplexed", logs: multiplexed.Bytes(), want: "out err"},
		{name: "tty", tty: true, logs: []byte("raw output"), want: "raw output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Docker{api: &fakeDockerAPI{tty: tt.tty, logs: tt.logs}}

			var buf bytes.Buffer
			require.NoError(t, d.Logs(context.Background(), Unit{Name: "pulsar-broker", ID: "aaa"}, &buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestDocker_LogsMissingContainer(t *testing.T) {
	d := &Docker{api: &fakeDockerAPI{}}
	err := d.Logs(context.Background(), Unit{Name: "missing"}, io.Discard)
	require.Error(t, err)
}

func TestDocker_Describe(t *testing.T) {
	d := &Docker{api: &fakeDockerAPI{inspect: []byte(`{"Id":"aaa","Name":"/pulsar-broker","State":{"Status":"running"}}`)}}

	b, err := d.Describe(context.Background(), Unit{Name: "pulsar-broker", ID: "aaa"})
	require.NoError(t, err)
	assert.Contains(t, string(b), "Id: aaa")
	assert.Contains(t, string(b), "Status: running")
}

func TestDocker_Copy(t *testing.T) {
	d := &Docker{api: &fakeDockerAPI{archive: tarStream(t, map[string]string{"broker.conf": "brokerServicePort=6650\n"})}}

	dir := t.TempDir()
	require.NoError(t, d.Copy(context.Background(), Unit{Name: "pulsar-broker", ID: "aaa"}, "/pulsar/conf/broker.conf", dir))

	b, err := os.ReadFile(filepath.Join(dir, "broker.conf"))
	require.NoError(t, err)
	assert.Equal(t, "brokerServicePort=6650\n", string(b))
}
