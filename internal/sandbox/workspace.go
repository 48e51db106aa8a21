package sandbox

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

type File struct {
	Name    string
	Content string
}

// Workspace is a private host directory mounted into a job's containers.
type Workspace struct {
	Dir string

	once sync.Once
	err  error
}

// NewWorkspace creates a fresh directory under root (or the OS temp dir).
// mode must let the container user write into it.
func NewWorkspace(root string, mode os.FileMode) (*Workspace, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create workspace root")
		}
	}
	dir, err := os.MkdirTemp(root, "run-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create workspace")
	}
	if err := os.Chmod(dir, mode); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "failed to set workspace permissions")
	}
	return &Workspace{Dir: dir}, nil
}

func (w *Workspace) Write(files ...File) error {
	for _, f := range files {
		if f.Name == "" || filepath.Base(f.Name) != f.Name {
			return errors.Errorf("invalid workspace file name %q", f.Name)
		}
		if err := os.WriteFile(filepath.Join(w.Dir, f.Name), []byte(f.Content), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", f.Name)
		}
	}
	return nil
}

// Close removes the directory tree. It is safe to call more than once.
func (w *Workspace) Close() error {
	w.once.Do(func() {
		if err := os.RemoveAll(w.Dir); err != nil {
			w.err = errors.Wrap(err, "failed to remove workspace")
		}
	})
	return w.err
}
