package collect

import (
	"context"
	"path"
	"path/filepath"

	"github.com/replicatedhq/pulsar-diag/pkg/constants"
)

const ConfigCollectorName = "config"

// ConfigHarvester copies the Pulsar configuration files of the admin target into conf/.
type ConfigHarvester struct {
	*Context
}

func (h *ConfigHarvester) Harvest(ctx context.Context, target string) {
	if target == "" {
		h.Log.Info("no admin target, skipping config collection")
		return
	}

	unit := h.Unit(target)
	h.Log.Info("collecting config", "unit", unit.Name)

	dir, err := h.Tree.Dir(constants.ConfDir)
	if err != nil {
		h.Errors.Record(ConfigCollectorName, unit.Name, constants.ConfDir, err)
		return
	}

	for _, name := range constants.ConfigFiles {
		remotePath := path.Join(h.Paths.ConfDir(), name)
		relativePath := filepath.Join(constants.ConfDir, name)
		h.Log.V(1).Info("copying config file", "unit", unit.Name, "file", remotePath)

		if err := h.Runtime.Copy(ctx, unit, remotePath, dir); err != nil {
			h.Errors.Record(ConfigCollectorName, unit.Name, relativePath, err)
			continue
		}
		h.Tree.Track(relativePath)
	}
}
