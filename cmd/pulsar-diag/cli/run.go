package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	cursor "github.com/ahmetalpbalkan/go-cursor"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/replicatedhq/pulsar-diag/pkg/collect"
	"github.com/replicatedhq/pulsar-diag/pkg/diag"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tj/go-spin"
	"k8s.io/klog/v2"
)

func runDiag(cmd *cobra.Command, v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stopProgress := func() {}
	if !v.GetBool("quiet") && isatty.IsTerminal(os.Stdout.Fd()) {
		stopProgress = startSpinner()
	}
	defer stopProgress()

	summary, err := diag.Run(ctx, diag.Options{
		Topology:    v.GetString("type"),
		Namespace:   v.GetString("namespace"),
		OutputDir:   v.GetString("output-dir"),
		Filter:      v.GetString("container"),
		AdminUnit:   v.GetString("admin-unit"),
		PulsarHome:  v.GetString("pulsar-home"),
		LogDir:      v.GetString("log-dir"),
		Parallelism: v.GetInt("parallelism"),
		Timeout:     v.GetDuration("timeout"),
		Archive:     v.GetBool("archive"),
		Log:         klog.Background(),
	})
	if err != nil {
		return err
	}

	stopProgress()
	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

func printSummary(w io.Writer, summary *diag.Summary) {
	c := color.New()
	c.Fprintf(w, "Collected %d files from %d units into %s\n", len(summary.Files), summary.Units, summary.OutputDir)
	if summary.AdminTarget == "" {
		c.Fprintln(w, "No admin target was found, config files and the tenant inventory were skipped")
	} else {
		c.Fprintf(w, "Admin commands ran on %s\n", summary.AdminTarget)
	}
	if summary.Archive != "" {
		c.Fprintf(w, "Archive written to %s\n", summary.Archive)
	}

	if len(summary.Errors) == 0 {
		return
	}

	// collection errors are reported, they do not change the exit code
	errColor := color.New(color.FgHiRed)
	errColor.Fprintf(w, "%d collection steps failed, details in %s\n", len(summary.Errors), filepath.Join(summary.OutputDir, collect.ErrorsFilename))
	for _, e := range summary.Errors {
		errColor.Fprintf(w, " * %s\n", e.Error())
	}
}

// startSpinner draws a progress line on stdout until the returned func is called.
func startSpinner() func() {
	fmt.Print(cursor.Hide())

	s := spin.New()
	finishedCh := make(chan struct{})
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		for {
			select {
			case <-finishedCh:
				fmt.Printf("\r%s\r", cursor.ClearEntireLine())
				return
			case <-time.After(time.Millisecond * 100):
				fmt.Printf("\r%s \033[36mCollecting Pulsar diagnostics\033[m %s", cursor.ClearEntireLine(), s.Next())
			}
		}
	}()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(finishedCh)
		<-doneCh
		fmt.Print(cursor.Show())
	}
}
