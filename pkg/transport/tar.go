package transport

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// extractTar writes regular files and directories from r under dstDir. Entries that would
// escape dstDir are rejected.
func extractTar(r io.Reader, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0777); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	tarReader := tar.NewReader(r)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to read header from tar")
		}

		name := filepath.Clean(strings.TrimPrefix(header.Name, "/"))
		if name == "." {
			continue
		}
		if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
			return errors.Errorf("tar entry %q escapes destination", header.Name)
		}
		target := filepath.Join(dstDir, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0777); err != nil {
				return errors.Wrap(err, "failed to mkdir")
			}
		case tar.TypeReg:
			if err := writeFile(target, tarReader); err != nil {
				return errors.Wrapf(err, "failed to save file %s", header.Name)
			}
		}
	}
}

func writeFile(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrap(err, "failed to create output file directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return errors.Wrap(err, "failed to copy data")
	}
	return nil
}
