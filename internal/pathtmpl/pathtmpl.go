// Package pathtmpl resolves manifest install-directory templates such as
// "[installdir]\Common7\IDE" against a concrete installation root.
package pathtmpl

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/vsixextract/internal/security"
)

// Placeholder is replaced by the absolute installation root.
const Placeholder = "[installdir]"

var (
	// ErrEmptyTemplate is returned for an empty template.
	ErrEmptyTemplate = errors.New("empty install directory template")

	// ErrEscapesInstallRoot is returned when the resolved directory is not
	// inside the installation root.
	ErrEscapesInstallRoot = errors.New("install directory escapes installation root")
)

// Resolve substitutes every Placeholder in template with the absolute form of
// installRoot and converts both '\' and '/' to the host separator. A result
// that is still relative is taken relative to installRoot.
func Resolve(template, installRoot string) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ErrEmptyTemplate
	}

	root, err := filepath.Abs(installRoot)
	if err != nil {
		return "", fmt.Errorf("resolve installation root: %w", err)
	}

	// Separators are normalized per literal part so that the root itself is
	// never rewritten.
	parts := strings.Split(template, Placeholder)
	for i, part := range parts {
		parts[i] = NormalizeSeparators(part)
	}
	resolved := filepath.Clean(strings.Join(parts, root))

	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(root, resolved)
	}

	within, err := security.IsPathWithinDirectory(resolved, root)
	if err != nil {
		return "", err
	}
	if !within {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrEscapesInstallRoot, template, resolved)
	}

	return resolved, nil
}

// NormalizeSeparators rewrites both Windows and Unix separators to the host one.
func NormalizeSeparators(p string) string {
	p = strings.ReplaceAll(p, "\\", string(filepath.Separator))
	return strings.ReplaceAll(p, "/", string(filepath.Separator))
}
