package diag

import (
	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"
)

// archiveOutputDir writes outputDir to outputDir.tar.gz, replacing an earlier archive.
func archiveOutputDir(outputDir string) (string, error) {
	filename := outputDir + ".tar.gz"

	tarGz := archiver.TarGz{
		Tar: &archiver.Tar{
			ImplicitTopLevelFolder: false,
			OverwriteExisting:      true,
		},
	}
	if err := tarGz.Archive([]string{outputDir}, filename); err != nil {
		return "", errors.Wrap(err, "failed to create archive")
	}
	return filename, nil
}
