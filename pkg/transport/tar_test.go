package transport

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_extractTar(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "/conf/", Typeflag: tar.TypeDir, Mode: 0755}))
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "/conf/broker.conf", Typeflag: tar.TypeReg, Mode: 0644, Size: 5}))
	_, err := tw.Write([]byte("a=b\n\n"))
	require.NoError(t, err)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "conf/link", Typeflag: tar.TypeSymlink, Linkname: "/etc/passwd"}))
	require.NoError(t, tw.Close())

	dir := t.TempDir()
	require.NoError(t, extractTar(&buf, dir))

	b, err := os.ReadFile(filepath.Join(dir, "conf", "broker.conf"))
	require.NoError(t, err)
	assert.Equal(t, "a=b\n\n", string(b))

	_, err = os.Lstat(filepath.Join(dir, "conf", "link"))
	assert.True(t, os.IsNotExist(err))
}

func Test_extractTarRejectsEscape(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../../evil", Typeflag: tar.TypeReg, Mode: 0644, Size: 1}))
	_, err := tw.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	root := t.TempDir()
	err = extractTar(&buf, filepath.Join(root, "out"))
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(root, "evil"))
	assert.True(t, os.IsNotExist(err))
}

func Test_stderrIsBenign(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   bool
	}{
		{name: "empty", stderr: "", want: true},
		{name: "whitespace", stderr: "\n  \n", want: true},
		{name: "leading slash warning", stderr: "tar: Removing leading '/' from member names\n", want: true},
		{name: "real error", stderr: "tar: Removing leading '/' from member names\ntar: x: Cannot stat\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stderrIsBenign([]byte(tt.stderr)))
		})
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Command: []string{"pulsar-admin", "tenants", "list"}, ExitCode: 2, Stderr: []byte("boom\n")}
	assert.Equal(t, `command "pulsar-admin tenants list" exited with status 2: boom`, err.Error())

	err = &ExitError{Command: []string{"false"}, ExitCode: 1}
	assert.Equal(t, `command "false" exited with status 1`, err.Error())
}
