package cli

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/collect"
	"github.com/replicatedhq/pulsar-diag/pkg/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Flags(t *testing.T) {
	cmd := RootCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "type", shorthand: "t", defValue: ""},
		{name: "namespace", shorthand: "n", defValue: "pulsar"},
		{name: "output-dir", shorthand: "o", defValue: ""},
		{name: "container", shorthand: "c", defValue: ""},
		{name: "pulsar-home", defValue: "/pulsar"},
		{name: "parallelism", defValue: "1"},
		{name: "timeout", defValue: "0s"},
		{name: "archive", defValue: "false"},
		{name: "debug", defValue: "false"},
		{name: "kubeconfig", defValue: ""},
		{name: "v", shorthand: "v", defValue: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			assert.Equal(t, tt.defValue, f.DefValue)
		})
	}
}

func TestRootCmd_InvalidTopology(t *testing.T) {
	cmd := RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--type", "swarm", "--output-dir", t.TempDir(), "--quiet"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrInvalidTopology))
}

func TestVersionCmd(t *testing.T) {
	cmd := VersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Pulsar Diag")
}

func Test_printSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, &diag.Summary{
		OutputDir:   "/tmp/pulsar_diag",
		AdminTarget: "pulsar-proxy-0",
		Units:       3,
		Files:       []string{"conf/broker.conf", "version.yaml"},
		Errors: []collect.CollectionError{
			{Collector: "config", Unit: "pulsar-proxy-0", Path: "conf/proxy.conf", Message: "no such file"},
		},
	})

	assert.Contains(t, out.String(), "Collected 2 files from 3 units into /tmp/pulsar_diag")
	assert.Contains(t, out.String(), "Admin commands ran on pulsar-proxy-0")
	assert.Contains(t, out.String(), "1 collection steps failed, details in /tmp/pulsar_diag/collection-errors.json")
	assert.Contains(t, out.String(), " * config pulsar-proxy-0 conf/proxy.conf: no such file")
}
