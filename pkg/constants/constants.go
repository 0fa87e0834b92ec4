package constants

const (
	// DEFAULT_CLIENT_QPS indicates the maximum QPS from pulsar-diag client.
	DEFAULT_CLIENT_QPS = 100
	// DEFAULT_CLIENT_BURST is maximum burst for throttle.
	DEFAULT_CLIENT_BURST = 100
	// LIB_TRACER_NAME is the name of the OpenTelemetry tracer used by pulsar-diag.
	LIB_TRACER_NAME = "github.com/replicatedhq/pulsar-diag"
	// ROOT_SPAN_NAME is the span covering a whole collection run.
	ROOT_SPAN_NAME = "pulsar-diag-run"
	// COLLECTOR_SPAN_TYPE and UNIT_SPAN_TYPE are values of the "type" span attribute.
	COLLECTOR_SPAN_TYPE = "Collector"
	UNIT_SPAN_TYPE      = "Unit"
	// VersionFilename is the name of the file that records the collector version in the output directory.
	VersionFilename = "version.yaml"

	// DefaultNamespace is the Kubernetes namespace Pulsar is deployed into.
	DefaultNamespace = "pulsar"
	// DefaultOutputDirName is created beneath the working directory, or beneath a user supplied directory that does not exist yet.
	DefaultOutputDirName = "pulsar_diag"
	// DefaultContainerFilter selects Pulsar containers on a Docker host.
	DefaultContainerFilter = "pulsar"
	// DefaultPulsarHome is the Pulsar installation directory inside every unit.
	DefaultPulsarHome = "/pulsar"
	// DefaultParallelism is the number of units of one role collected at a time.
	DefaultParallelism = 1

	// InventoryFilename is the tenant, namespace and topic report.
	InventoryFilename = "tenants_namespaces_topics_list.txt"
	LogsDir           = "logs"
	ConfDir           = "conf"
	DescribeDir       = "describe_pods"
	ClusterDir        = "cluster"
)

// ConfigFiles are copied from the admin target's configuration directory.
var ConfigFiles = []string{"broker.conf", "proxy.conf", "bookkeeper.conf", "zookeeper.conf"}
