package k8sutil

import (
	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"github.com/replicatedhq/pulsar-diag/pkg/version"
	flag "github.com/spf13/pflag"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/rest"
)

var (
	kubernetesConfigFlags *genericclioptions.ConfigFlags
)

func init() {
	kubernetesConfigFlags = genericclioptions.NewConfigFlags(false)
	// the namespace flag is owned by the root command, it defaults to the Pulsar namespace
	kubernetesConfigFlags.Namespace = nil
}

// AddFlags adds the kubeconfig connection flags (--kubeconfig, --context, ...) to flags.
func AddFlags(flags *flag.FlagSet) {
	kubernetesConfigFlags.AddFlags(flags)
}

func GetRESTConfig() (*rest.Config, error) {
	restConfig, err := kubernetesConfigFlags.ToRESTConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert kube flags to rest config")
	}

	restConfig.QPS = constants.DEFAULT_CLIENT_QPS
	restConfig.Burst = constants.DEFAULT_CLIENT_BURST
	restConfig.UserAgent = version.GetUserAgent()
	return restConfig, nil
}
