package collect

import (
	"context"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"github.com/replicatedhq/pulsar-diag/pkg/roles"
	"github.com/replicatedhq/pulsar-diag/pkg/transport"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const LogsCollectorName = "logs"

// LogHarvester saves the log stream and the log directory of every classified unit
// under logs/<role>/<unit>/.
type LogHarvester struct {
	*Context
	// Parallelism bounds the units of one role collected at a time
	Parallelism int
}

func (h *LogHarvester) Harvest(ctx context.Context, buckets roles.Buckets) {
	h.Log.Info("collecting logs")

	for _, role := range roles.All {
		names := buckets[role]
		if len(names) == 0 {
			h.Log.Info("no running units found", "role", role)
			continue
		}
		h.harvestRole(ctx, role, names)
	}
}

func (h *LogHarvester) harvestRole(ctx context.Context, role roles.Role, names []string) {
	limit := h.Parallelism
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for _, name := range names {
		unit := h.Unit(name)
		g.Go(func() error {
			h.harvestUnit(ctx, role, unit)
			return nil
		})
	}
	g.Wait()
}

func (h *LogHarvester) harvestUnit(ctx context.Context, role roles.Role, unit transport.Unit) {
	ctx, span := startUnitSpan(ctx, LogsCollectorName, unit.Name)
	span.SetAttributes(attribute.String("role", string(role)))
	defer span.End()

	unitDir := filepath.Join(constants.LogsDir, string(role), unit.Name)
	h.Log.V(1).Info("collecting logs", "role", role, "unit", unit.Name)

	logPath := filepath.Join(unitDir, unit.Name+".log")
	if err := h.saveLogs(ctx, unit, logPath); err != nil {
		h.Tree.DiscardEmpty(logPath)
		h.Errors.Record(LogsCollectorName, unit.Name, logPath, err)
		spanError(span, err)
	}

	copyPath := filepath.Join(unitDir, path.Base(h.Paths.Logs()))
	if err := h.copyLogDir(ctx, unit, unitDir); err != nil {
		h.Errors.Record(LogsCollectorName, unit.Name, copyPath, err)
		spanError(span, err)
		return
	}
	h.Tree.Track(copyPath)
}

func (h *LogHarvester) saveLogs(ctx context.Context, unit transport.Unit, relativePath string) error {
	w, err := h.Tree.GetWriter(relativePath)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := h.Runtime.Logs(ctx, unit, w); err != nil {
		return errors.Wrap(err, "failed to get logs")
	}
	return nil
}

func (h *LogHarvester) copyLogDir(ctx context.Context, unit transport.Unit, unitDir string) error {
	dir, err := h.Tree.Dir(unitDir)
	if err != nil {
		return err
	}
	if err := h.Runtime.Copy(ctx, unit, h.Paths.Logs(), dir); err != nil {
		return errors.Wrapf(err, "failed to copy %s", h.Paths.Logs())
	}
	return nil
}
