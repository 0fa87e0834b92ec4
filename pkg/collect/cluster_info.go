package collect

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
)

const ClusterInfoCollectorName = "cluster-info"

// ClusterInfoCollector saves the Pulsar clusters known to the admin target and the
// active brokers of each.
type ClusterInfoCollector struct {
	*Context
}

func (c *ClusterInfoCollector) Collect(ctx context.Context, target string) {
	if target == "" {
		c.Log.Info("no admin target, skipping cluster info")
		return
	}

	unit := c.Unit(target)
	c.Log.Info("collecting cluster info", "unit", unit.Name)

	clustersPath := filepath.Join(constants.ClusterDir, "clusters.txt")
	clusters, err := c.admin(ctx, unit, "clusters", "list")
	if err != nil {
		c.Errors.Record(ClusterInfoCollectorName, unit.Name, clustersPath, errors.Wrap(err, "failed to list clusters"))
		return
	}
	if err := c.Tree.SaveResult(clustersPath, strings.NewReader(clusters)); err != nil {
		c.Errors.Record(ClusterInfoCollectorName, unit.Name, clustersPath, err)
	}

	for _, cluster := range outputLines(clusters) {
		brokersPath := filepath.Join(constants.ClusterDir, fmt.Sprintf("brokers-%s.txt", filepath.Base(cluster)))
		c.Log.V(1).Info("listing brokers", "cluster", cluster)

		brokers, err := c.admin(ctx, unit, "brokers", "list", cluster)
		if err != nil {
			c.Errors.Record(ClusterInfoCollectorName, unit.Name, brokersPath, errors.Wrapf(err, "failed to list brokers of cluster %s", cluster))
			continue
		}
		if err := c.Tree.SaveResult(brokersPath, strings.NewReader(brokers)); err != nil {
			c.Errors.Record(ClusterInfoCollectorName, unit.Name, brokersPath, err)
		}
	}
}
