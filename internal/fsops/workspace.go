package fsops

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// Workspace is a uniquely named temporary directory owned by one caller.
// Release removes it; callers defer Release right after acquiring it.
type Workspace struct {
	fs   afero.Fs
	path string
	once sync.Once
	err  error
}

// NewWorkspace creates a fresh directory under the system temp dir.
func NewWorkspace(fs afero.Fs, prefix string) (*Workspace, error) {
	dir, err := CreateTempDir(fs, prefix)
	if err != nil {
		return nil, err
	}
	return &Workspace{fs: fs, path: dir}, nil
}

// Path returns the workspace directory.
func (w *Workspace) Path() string {
	return w.path
}

// Release removes the workspace and everything in it. Safe to call more than once.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if err := w.fs.RemoveAll(w.path); err != nil {
			w.err = fmt.Errorf("remove workspace %s: %w", w.path, err)
		}
	})
	return w.err
}

// CreateTempDir creates a temporary directory with the given prefix
func CreateTempDir(fs afero.Fs, prefix string) (string, error) {
	tmpDir := os.TempDir()
	if err := fs.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("create temp root: %w", err)
	}
	dir, err := afero.TempDir(fs, tmpDir, prefix)
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return dir, nil
}
