package collect

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"github.com/replicatedhq/pulsar-diag/pkg/transport"
)

const DescribeCollectorName = "describe"

// Describer writes describe_pods/<unit>.yaml for every enumerated unit, whatever its role or status.
type Describer struct {
	*Context
}

func (d *Describer) Describe(ctx context.Context, units []transport.Unit) {
	d.Log.Info("describing units", "count", len(units))

	for _, unit := range units {
		d.describeUnit(ctx, unit)
	}
}

func (d *Describer) describeUnit(ctx context.Context, unit transport.Unit) {
	ctx, span := startUnitSpan(ctx, DescribeCollectorName, unit.Name)
	defer span.End()

	relativePath := filepath.Join(constants.DescribeDir, unit.Name+".yaml")
	d.Log.V(1).Info("describing unit", "unit", unit.Name)

	b, err := d.Runtime.Describe(ctx, unit)
	if err == nil {
		err = d.Tree.SaveResult(relativePath, bytes.NewReader(b))
	}
	if err != nil {
		d.Errors.Record(DescribeCollectorName, unit.Name, relativePath, err)
		spanError(span, err)
	}
}
