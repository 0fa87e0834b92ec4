package collect

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// OutputTree is the on-disk destination of a run. Directories are created on first use
// and writing the same relative path twice overwrites the file.
type OutputTree struct {
	Root string

	mu    sync.Mutex
	files map[string]struct{}
}

func NewOutputTree(root string) *OutputTree {
	return &OutputTree{
		Root:  root,
		files: map[string]struct{}{},
	}
}

func (t *OutputTree) Path(relativePath string) string {
	return filepath.Join(t.Root, relativePath)
}

// Dir creates relativeDir if needed and returns its absolute path.
func (t *OutputTree) Dir(relativeDir string) (string, error) {
	dir := t.Path(relativeDir)
	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}
	return dir, nil
}

// SaveResult saves reader to relativePath.
func (t *OutputTree) SaveResult(relativePath string, reader io.Reader) error {
	if reader == nil {
		return nil
	}

	f, err := t.GetWriter(relativePath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return errors.Wrap(err, "failed to copy data")
	}
	return nil
}

// GetWriter truncates relativePath and returns a writer to it. The caller closes it.
func (t *OutputTree) GetWriter(relativePath string) (io.WriteCloser, error) {
	fileDir, _ := filepath.Split(relativePath)
	if _, err := t.Dir(fileDir); err != nil {
		return nil, err
	}

	f, err := os.Create(t.Path(relativePath))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}

	t.track(relativePath)
	return f, nil
}

// DiscardEmpty removes relativePath when nothing was written to it, so that a failed
// step does not leave an empty artifact behind.
func (t *OutputTree) DiscardEmpty(relativePath string) {
	info, err := os.Stat(t.Path(relativePath))
	if err != nil || info.Size() > 0 {
		return
	}
	if err := os.Remove(t.Path(relativePath)); err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, filepath.ToSlash(filepath.Clean(relativePath)))
}

// Track records a path populated by something other than the tree itself,
// such as a directory copied from a unit.
func (t *OutputTree) Track(relativePath string) {
	t.track(relativePath)
}

func (t *OutputTree) track(relativePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[filepath.ToSlash(filepath.Clean(relativePath))] = struct{}{}
}

// Files returns every path written during this run, sorted.
func (t *OutputTree) Files() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	files := make([]string, 0, len(t.files))
	for f := range t.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
