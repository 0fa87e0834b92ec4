package collect

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"github.com/replicatedhq/pulsar-diag/pkg/transport"
)

const InventoryCollectorName = "inventory"

const inventoryHeader = "Pulsar Tenants, Namespaces, and Topics\n"

// InventoryCollector walks tenants, namespaces and topics through pulsar-admin on the
// admin target and writes them to the inventory report in discovery order.
type InventoryCollector struct {
	*Context
}

// inventoryReport appends to the report and keeps the first write error.
type inventoryReport struct {
	w   io.Writer
	err error
}

func (r *inventoryReport) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (c *InventoryCollector) Collect(ctx context.Context, target string) {
	if target == "" {
		c.Log.Info("no admin target, skipping tenant inventory")
		return
	}

	unit := c.Unit(target)
	c.Log.Info("collecting tenant inventory", "unit", unit.Name)

	f, err := c.Tree.GetWriter(constants.InventoryFilename)
	if err != nil {
		c.Errors.Record(InventoryCollectorName, unit.Name, constants.InventoryFilename, err)
		return
	}
	defer f.Close()

	report := &inventoryReport{w: f}
	report.printf(inventoryHeader)

	tenants, err := c.admin(ctx, unit, "tenants", "list")
	if err != nil {
		c.record(unit, errors.Wrap(err, "failed to list tenants"))
		return
	}

	for _, tenant := range outputLines(tenants) {
		c.collectTenant(ctx, unit, report, tenant)
	}

	if report.err != nil {
		c.record(unit, errors.Wrap(report.err, "failed to write report"))
	}
}

func (c *InventoryCollector) collectTenant(ctx context.Context, unit transport.Unit, report *inventoryReport, tenant string) {
	report.printf("\nTenant: %s\n", tenant)
	c.Log.V(1).Info("listing namespaces", "tenant", tenant)

	out, err := c.admin(ctx, unit, "namespaces", "list", tenant)
	if err != nil {
		c.record(unit, errors.Wrapf(err, "failed to list namespaces of tenant %s", tenant))
		return
	}
	namespaces := outputLines(out)

	// retention of every namespace comes before any topic
	for _, ns := range namespaces {
		report.printf("  Namespace: %s\n", ns)

		retention, err := c.admin(ctx, unit, "namespaces", "get-retention", ns)
		if err != nil {
			c.record(unit, errors.Wrapf(err, "failed to get retention of namespace %s", ns))
			continue
		}
		report.printf("          Retention Policies: %s\n", foldLines(retention))
	}

	for _, ns := range namespaces {
		out, err := c.admin(ctx, unit, "topics", "list", ns)
		if err != nil {
			c.record(unit, errors.Wrapf(err, "failed to list topics of namespace %s", ns))
			continue
		}

		for _, topic := range outputLines(out) {
			report.printf("     Topic: %s\n", topic)

			stats, err := c.admin(ctx, unit, "topics", "stats", topic)
			if err != nil {
				c.record(unit, errors.Wrapf(err, "failed to get stats of topic %s", topic))
				continue
			}
			report.printf("          Stats: %s\n", foldLines(stats))
		}
	}
}

func (c *InventoryCollector) record(unit transport.Unit, err error) {
	c.Errors.Record(InventoryCollectorName, unit.Name, constants.InventoryFilename, err)
}
