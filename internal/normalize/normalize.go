// Package normalize decodes percent-encoded file and directory names left
// behind by archive extraction.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/vsixextract/internal/fsops"
	"github.com/quantmind-br/vsixextract/internal/security"
	"github.com/quantmind-br/vsixextract/internal/walker"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	// ErrInvalidName is returned when a name cannot be decoded into a usable path segment.
	ErrInvalidName = errors.New("invalid encoded name")

	// ErrNameCollision is returned when the decoded name is already taken.
	ErrNameCollision = errors.New("decoded name already exists")
)

// Normalizer renames entries whose names contain percent escapes.
type Normalizer struct {
	Fs  afero.Fs
	Log *zerolog.Logger
}

// New creates a Normalizer.
func New(fs afero.Fs, log *zerolog.Logger) *Normalizer {
	return &Normalizer{Fs: fs, Log: log}
}

// Normalize decodes every name below root in place. A directory is renamed
// before its children are visited. Renames already done are kept when a
// later entry fails.
func (n *Normalizer) Normalize(ctx context.Context, root string) error {
	return walker.WalkContext(ctx, n.Fs, root, walker.VisitorFunc(n.visit))
}

func (n *Normalizer) visit(path string) (string, error) {
	name := filepath.Base(path)

	decoded, changed, err := DecodeName(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if !changed {
		return path, nil
	}

	renamed := filepath.Join(filepath.Dir(path), decoded)
	if fsops.Exists(n.Fs, renamed) {
		return "", fmt.Errorf("%w: %s -> %s", ErrNameCollision, path, renamed)
	}

	if err := n.Fs.Rename(path, renamed); err != nil {
		return "", fmt.Errorf("rename %s -> %s: %w", path, renamed, err)
	}

	if n.Log != nil {
		n.Log.Debug().
			Str("from", name).
			Str("to", decoded).
			Str("dir", filepath.Dir(path)).
			Msg("decoded entry name")
	}

	return renamed, nil
}

// DecodeName percent-decodes a single path segment. Only well-formed %XX
// triplets are decoded; a '%' not followed by two hex digits is kept as is.
// '+' is not treated as a space. changed reports whether the name differs.
func DecodeName(name string) (decoded string, changed bool, err error) {
	if !strings.Contains(name, "%") {
		return name, false, nil
	}

	decoded = percentDecode(name)
	if decoded == name {
		return name, false, nil
	}

	if err := security.ValidateFileName(decoded); err != nil {
		return "", false, fmt.Errorf("%w: %q: %w", ErrInvalidName, name, err)
	}

	return decoded, true, nil
}

func percentDecode(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}

	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
