package fsops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyStats counts what a copy wrote to the destination.
type CopyStats struct {
	Files int
	Bytes int64
}

// Add accumulates other into s.
func (s *CopyStats) Add(other CopyStats) {
	s.Files += other.Files
	s.Bytes += other.Bytes
}

// EnsureDir ensures a directory exists with the given permissions
func EnsureDir(fs afero.Fs, path string, perm os.FileMode) error {
	if err := fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return nil
}

// Exists checks if a path exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory
func IsDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsRegular checks if a path is a regular file
func IsRegular(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// CopyFile copies a file from src to dst, truncating dst if it exists.
func CopyFile(fs afero.Fs, src, dst string, perm os.FileMode) (int64, error) {
	srcFile, err := fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return n, fmt.Errorf("write destination: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return n, fmt.Errorf("close destination: %w", err)
	}

	return n, nil
}

// CopyTree copies the contents of src (not src itself) into dst.
// Existing files are overwritten and existing directories are merged.
// Entries that are neither regular files nor directories are skipped.
func CopyTree(fs afero.Fs, src, dst string) (CopyStats, error) {
	var stats CopyStats

	err := afero.Walk(fs, src, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return EnsureDir(fs, target, info.Mode().Perm()|0700)
		case info.Mode().IsRegular():
			n, err := CopyFile(fs, path, target, info.Mode().Perm())
			if err != nil {
				return fmt.Errorf("copy %s: %w", rel, err)
			}
			stats.Files++
			stats.Bytes += n
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		return stats, err
	}

	return stats, nil
}
