package diag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/collect"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"github.com/replicatedhq/pulsar-diag/pkg/k8sutil"
	"github.com/replicatedhq/pulsar-diag/pkg/roles"
	"github.com/replicatedhq/pulsar-diag/pkg/transport"
	"github.com/replicatedhq/pulsar-diag/pkg/version"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Run performs one collection pass. The returned error is non-nil only when the run
// could not start. Failures of individual steps are recorded in the summary instead.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	topology, err := ParseTopology(opts.Topology)
	if err != nil {
		return nil, err
	}

	outputDir, err := ResolveOutputDir(opts.OutputDir)
	if err != nil {
		return nil, newSetupError(err, "failed to prepare output directory")
	}

	runID := ksuid.New().String()
	log := opts.Log.WithValues("run", runID)

	ctx, rootSpan := otel.Tracer(constants.LIB_TRACER_NAME).Start(ctx, constants.ROOT_SPAN_NAME)
	rootSpan.SetAttributes(attribute.String("run", runID), attribute.String("topology", string(topology)))
	defer rootSpan.End()

	paths := collect.PulsarPaths{Home: opts.PulsarHome, LogDir: opts.LogDir}
	if paths.Home == "" {
		paths.Home = constants.DefaultPulsarHome
	}

	rt := opts.Runtime
	if rt == nil {
		rt, err = newRuntime(topology, opts, paths)
		if err != nil {
			return nil, newSetupError(err, "failed to create runtime")
		}
	}
	rt = transport.WithTimeout(rt, opts.Timeout)

	summary := &Summary{
		RunID:     runID,
		Topology:  topology,
		OutputDir: outputDir,
		StartedAt: time.Now(),
	}
	if topology == TopologyKube {
		summary.Namespace = namespace(opts)
	}
	log.Info("starting collection", "topology", topology, "outputDir", outputDir)

	tree := collect.NewOutputTree(outputDir)
	recorder := collect.NewErrorRecorder(log)

	if v, err := version.GetVersionFile(); err != nil {
		recorder.Record("version", "", constants.VersionFilename, err)
	} else if err := tree.SaveResult(constants.VersionFilename, strings.NewReader(v)); err != nil {
		recorder.Record("version", "", constants.VersionFilename, err)
	}

	units, err := rt.ListUnits(ctx)
	if err != nil {
		recorder.Record("enumerate", "", "", errors.Wrap(err, "failed to enumerate units"))
		units = nil
	}
	log.Info("enumerated units", "count", len(units))

	rules := roles.DefaultRules
	if topology == TopologyStandalone {
		rules = roles.StandaloneRules
	}
	buckets := rules.Classify(units)

	target := opts.AdminUnit
	if target == "" {
		target, _ = roles.ResolveBuckets(buckets)
	}
	if target == "" {
		log.Info("no bastion, proxy, broker or zookeeper unit is running, collectors that need an admin target are skipped")
	} else {
		log.Info("using admin target", "unit", target)
	}

	cc := collect.NewContext(rt, tree, recorder, log, paths, units)
	runCollector(ctx, recorder, collect.LogsCollectorName, func(ctx context.Context) {
		(&collect.LogHarvester{Context: cc, Parallelism: opts.Parallelism}).Harvest(ctx, buckets)
	})
	runCollector(ctx, recorder, collect.ConfigCollectorName, func(ctx context.Context) {
		(&collect.ConfigHarvester{Context: cc}).Harvest(ctx, target)
	})
	runCollector(ctx, recorder, collect.DescribeCollectorName, func(ctx context.Context) {
		(&collect.Describer{Context: cc}).Describe(ctx, units)
	})
	runCollector(ctx, recorder, collect.InventoryCollectorName, func(ctx context.Context) {
		(&collect.InventoryCollector{Context: cc}).Collect(ctx, target)
	})
	runCollector(ctx, recorder, collect.ClusterInfoCollectorName, func(ctx context.Context) {
		(&collect.ClusterInfoCollector{Context: cc}).Collect(ctx, target)
	})

	saveErrors(log, recorder, tree)

	if opts.Archive {
		filename, err := archiveOutputDir(outputDir)
		if err != nil {
			recorder.Record("archive", "", "", err)
			saveErrors(log, recorder, tree)
		} else {
			summary.Archive = filename
			log.Info("archived output directory", "archive", filename)
		}
	}

	summary.AdminTarget = target
	summary.Units = len(units)
	summary.Files = tree.Files()
	summary.Errors = recorder.Errors()
	summary.FinishedAt = time.Now()
	summary.err = recorder.Err()
	if summary.err != nil {
		rootSpan.SetStatus(codes.Error, fmt.Sprintf("%d collection steps failed", len(summary.Errors)))
	}

	log.Info("collection finished", "files", len(summary.Files), "errors", len(summary.Errors))
	return summary, nil
}

// runCollector runs fn inside a span named after the collector. The span is marked
// failed when the collector recorded failures.
func runCollector(ctx context.Context, recorder *collect.ErrorRecorder, name string, fn func(ctx context.Context)) {
	ctx, span := otel.Tracer(constants.LIB_TRACER_NAME).Start(ctx, name)
	span.SetAttributes(attribute.String("type", constants.COLLECTOR_SPAN_TYPE))
	defer span.End()

	before := recorder.Count(name)
	fn(ctx)
	if failed := recorder.Count(name) - before; failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d collection steps failed", failed))
	}
}

func saveErrors(log logr.Logger, recorder *collect.ErrorRecorder, tree *collect.OutputTree) {
	if err := recorder.Save(tree); err != nil {
		log.Error(err, "failed to save collection errors")
	}
}

func namespace(opts Options) string {
	if opts.Namespace == "" {
		return constants.DefaultNamespace
	}
	return opts.Namespace
}

func newRuntime(topology Topology, opts Options, paths collect.PulsarPaths) (transport.Runtime, error) {
	switch topology {
	case TopologyKube:
		restConfig, err := k8sutil.GetRESTConfig()
		if err != nil {
			return nil, err
		}
		return transport.NewKube(restConfig, namespace(opts), opts.Filter)
	case TopologyDocker:
		filter := opts.Filter
		if filter == "" {
			filter = constants.DefaultContainerFilter
		}
		return transport.NewDocker(filter)
	case TopologyStandalone:
		return transport.NewLocal(paths.Logs()), nil
	}
	return nil, errors.Wrapf(ErrInvalidTopology, "%q", topology)
}
