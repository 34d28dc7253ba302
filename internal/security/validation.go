package security

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxFileNameLength is the longest single path segment accepted by common
// filesystems (NAME_MAX on Linux, the per-component limit on NTFS).
const MaxFileNameLength = 255

// ValidateFileName checks that name is usable as a single path segment.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}

	if name == "." || name == ".." {
		return fmt.Errorf("file name cannot be %q", name)
	}

	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("file name contains a path separator: %q", name)
	}

	if strings.Contains(name, "\x00") {
		return fmt.Errorf("file name contains null byte")
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("file name is not valid UTF-8: %q", name)
	}

	if len(name) > MaxFileNameLength {
		return fmt.Errorf("file name too long (%d bytes, max %d)", len(name), MaxFileNameLength)
	}

	return nil
}
