package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateExtractPath prevents directory traversal attacks (Zip Slip vulnerability).
// Ensures that an archive entry, once joined to targetDir, does not escape it.
func ValidateExtractPath(targetDir, entryName string) error {
	if strings.Contains(entryName, "\x00") {
		return fmt.Errorf("path contains null byte: %q", entryName)
	}

	cleanPath := filepath.Clean(filepath.FromSlash(entryName))

	if filepath.IsAbs(cleanPath) || filepath.VolumeName(cleanPath) != "" {
		return fmt.Errorf("absolute path not allowed: %s", entryName)
	}

	for _, part := range strings.Split(cleanPath, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("path contains ..: %s", entryName)
		}
	}

	within, err := IsPathWithinDirectory(filepath.Join(targetDir, cleanPath), targetDir)
	if err != nil {
		return err
	}
	if !within {
		return fmt.Errorf("path escapes destination directory: %s", entryName)
	}

	return nil
}

// IsPathWithinDirectory reports whether targetPath is basePath or lies below it.
// Both paths are made absolute and cleaned before comparison; symlinks are not
// resolved.
func IsPathWithinDirectory(targetPath, basePath string) (bool, error) {
	cleanTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false, fmt.Errorf("failed to resolve target path: %w", err)
	}

	cleanBase, err := filepath.Abs(basePath)
	if err != nil {
		return false, fmt.Errorf("failed to resolve base path: %w", err)
	}

	rel, err := filepath.Rel(cleanBase, cleanTarget)
	if err != nil {
		// different volumes on windows
		return false, nil
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}

	return true, nil
}
