package diag

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/replicatedhq/pulsar-diag/pkg/constants"
)

// ResolveOutputDir returns the directory results are written to and creates it.
// An empty dir means ./pulsar_diag. A dir that does not exist gets a pulsar_diag
// subdirectory. An existing dir is used as is, unless it holds the pulsar_diag
// subdirectory of an earlier run, which is reused so that repeated runs with the
// same dir overwrite the same files.
func ResolveOutputDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to get working directory")
		}
		dir = filepath.Join(wd, constants.DefaultOutputDirName)
	} else {
		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			dir = filepath.Join(dir, constants.DefaultOutputDirName)
		case err != nil:
			return "", errors.Wrapf(err, "failed to stat %s", dir)
		case !info.IsDir():
			return "", errors.Errorf("%s is not a directory", dir)
		default:
			previous := filepath.Join(dir, constants.DefaultOutputDirName)
			if info, err := os.Stat(previous); err == nil && info.IsDir() {
				dir = previous
			}
		}
	}

	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, nil
	}
	return abs, nil
}
