// Package manifest reads the manifest.json shipped at the root of an
// extracted VSIX payload.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileName is the manifest location relative to the payload root.
const FileName = "manifest.json"

var (
	// ErrManifestNotFound is returned by Load when the payload has no manifest.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrInvalidManifest is returned when the manifest is not valid JSON.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Manifest exposes the single field this tool consumes. Everything else in
// the document is ignored.
type Manifest struct {
	ExtensionDirField *string `json:"extensionDir"`
}

// New builds a manifest, mostly for tests.
func New(extensionDir *string) *Manifest {
	return &Manifest{ExtensionDirField: extensionDir}
}

// ExtensionDir returns the install-relative path template and whether it is set.
func (m *Manifest) ExtensionDir() (string, bool) {
	if m == nil || m.ExtensionDirField == nil {
		return "", false
	}
	return *m.ExtensionDirField, true
}

// Parse decodes a manifest. A leading byte-order mark is dropped; UTF-16
// documents announced by their BOM are transcoded to UTF-8 first.
func Parse(data []byte) (*Manifest, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode text: %w", ErrInvalidManifest, err)
	}

	var m Manifest
	if err := json.Unmarshal(decoded, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	return &m, nil
}

// Load reads and parses <dir>/manifest.json.
func Load(fs afero.Fs, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)

	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return m, nil
}
