// Package walker implements the recursive directory traversal shared by
// archive discovery and the in-place rename pass.
package walker

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrWalk marks failures to list a directory or stat a visited entry.
var ErrWalk = errors.New("walk failed")

// Visitor is applied to every entry below the walk root.
//
// Visit returns the path under which the entry now lives. When the visitor
// renames or moves the entry it must return the new path; recursion follows
// the returned path, never the original one.
type Visitor interface {
	Visit(path string) (string, error)
}

// VisitorFunc adapts an ordinary function to the Visitor interface.
type VisitorFunc func(path string) (string, error)

// Visit calls f(path).
func (f VisitorFunc) Visit(path string) (string, error) {
	return f(path)
}

// Walk visits every entry below root exactly once. The root itself is not
// visited. Any error aborts the whole traversal.
func Walk(fs afero.Fs, root string, v Visitor) error {
	return WalkContext(context.Background(), fs, root, v)
}

// WalkContext is Walk with cancellation checked before each entry.
func WalkContext(ctx context.Context, fs afero.Fs, root string, v Visitor) error {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return fmt.Errorf("%w: read directory %s: %w", ErrWalk, root, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		updated, err := v.Visit(filepath.Join(root, entry.Name()))
		if err != nil {
			return err
		}

		info, err := fs.Stat(updated)
		if errors.Is(err, iofs.ErrNotExist) {
			// the visitor removed the entry; nothing to descend into
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: stat %s: %w", ErrWalk, updated, err)
		}
		if !info.IsDir() {
			continue
		}

		if err := WalkContext(ctx, fs, updated, v); err != nil {
			return err
		}
	}

	return nil
}
