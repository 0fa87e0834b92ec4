package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/replicatedhq/pulsar-diag/internal/traces"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"github.com/replicatedhq/pulsar-diag/pkg/k8sutil"
	"github.com/replicatedhq/pulsar-diag/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulsar-diag",
		Args:  cobra.NoArgs,
		Short: "Collect diagnostics from an Apache Pulsar cluster",
		Long: `Collect logs, configuration files, unit descriptions and a tenant, namespace
and topic inventory from a Pulsar cluster running on Docker, Kubernetes or as a
standalone process. Failures of single steps are reported and collection continues.`,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			v := viper.GetViper()
			v.BindPFlags(cmd.Flags())

			logger.SetupLogger(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()
			closer, err := traces.ConfigureTracing("pulsar-diag")
			if err != nil {
				// Do not fail the collection if tracing fails
				klog.Errorf("Failed to initialize open tracing provider: %v", err)
			} else {
				defer closer()
			}

			err = runDiag(cmd, v)
			if v.GetBool("debug") || v.IsSet("v") {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s", traces.GetExporterInstance().GetSummary())
			}
			return err
		},
	}

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(VersionCmd())

	cmd.Flags().StringP("type", "t", "", "deployment topology, one of docker, kube or standalone (required)")
	cmd.Flags().StringP("namespace", "n", constants.DefaultNamespace, "Kubernetes namespace of the Pulsar cluster")
	cmd.Flags().StringP("output-dir", "o", "", "output directory (default ./pulsar_diag)")
	cmd.Flags().StringP("container", "c", "", "only collect from units whose name contains this value (docker default \"pulsar\")")
	cmd.Flags().String("admin-unit", "", "unit to run pulsar-admin on instead of the resolved bastion, proxy, broker or zookeeper")
	cmd.Flags().String("pulsar-home", constants.DefaultPulsarHome, "Pulsar installation directory inside each unit")
	cmd.Flags().String("log-dir", "", "log directory copied from each unit (default <pulsar-home>/logs)")
	cmd.Flags().Int("parallelism", constants.DefaultParallelism, "units of one role collected at a time")
	cmd.Flags().Duration("timeout", 0, "timeout of each call made to a unit, 0 means no timeout")
	cmd.Flags().Bool("archive", false, "write <output-dir>.tar.gz when collection finishes")
	cmd.Flags().BoolP("quiet", "q", false, "do not print progress logs")
	cmd.Flags().Bool("debug", false, "print the duration of every collector and unit step when collection finishes")

	viper.BindPFlags(cmd.Flags())

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	k8sutil.AddFlags(cmd.Flags())

	// Initialize klog flags
	logger.InitKlogFlags(cmd.Flags())

	return cmd
}

func InitAndExecute() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PULSAR_DIAG")
	viper.AutomaticEnv()
}
