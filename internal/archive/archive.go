// Package archive extracts zip-compatible containers such as .vsix packages.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/quantmind-br/vsixextract/internal/security"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ErrExtract is matched by every error returned from Decompress.
var ErrExtract = errors.New("extraction failed")

// Decompressor populates targetDir with the contents of an archive.
type Decompressor interface {
	Decompress(ctx context.Context, archivePath, targetDir string) error
}

// DecompressorFunc adapts a function to the Decompressor interface.
type DecompressorFunc func(ctx context.Context, archivePath, targetDir string) error

// Decompress calls f.
func (f DecompressorFunc) Decompress(ctx context.Context, archivePath, targetDir string) error {
	return f(ctx, archivePath, targetDir)
}

// ExtractError describes a failed extraction. Entry is empty when the archive
// itself could not be opened.
type ExtractError struct {
	Archive string
	Entry   string
	Err     error
}

func (e *ExtractError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
	}
	return fmt.Sprintf("extract %s: entry %s: %v", e.Archive, e.Entry, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Is reports ErrExtract so callers can classify without errors.As.
func (e *ExtractError) Is(target error) bool { return target == ErrExtract }

// ZipDecompressor extracts zip archives through an afero filesystem.
type ZipDecompressor struct {
	Fs  afero.Fs
	Log *zerolog.Logger
}

// NewZipDecompressor creates a decompressor bound to fs.
func NewZipDecompressor(fs afero.Fs, log *zerolog.Logger) *ZipDecompressor {
	return &ZipDecompressor{Fs: fs, Log: log}
}

// Decompress extracts every entry of archivePath below targetDir, keeping the
// archive's relative layout. Entries already written stay on disk on failure.
func (d *ZipDecompressor) Decompress(ctx context.Context, archivePath, targetDir string) error {
	r, closer, err := openZip(d.Fs, archivePath)
	if err != nil {
		return &ExtractError{Archive: archivePath, Err: err}
	}
	defer closer.Close()

	if err := d.Fs.MkdirAll(targetDir, 0755); err != nil {
		return &ExtractError{Archive: archivePath, Err: fmt.Errorf("create target directory: %w", err)}
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entryName(f.Name)
		if name == "" {
			continue
		}

		if err := security.ValidateExtractPath(targetDir, name); err != nil {
			return &ExtractError{Archive: archivePath, Entry: f.Name, Err: fmt.Errorf("invalid path in zip: %w", err)}
		}

		target := filepath.Join(targetDir, filepath.FromSlash(name))

		if f.FileInfo().IsDir() {
			if err := d.Fs.MkdirAll(target, dirMode(f)); err != nil {
				return &ExtractError{Archive: archivePath, Entry: f.Name, Err: fmt.Errorf("create directory: %w", err)}
			}
			continue
		}

		if err := d.extractFile(f, target); err != nil {
			return &ExtractError{Archive: archivePath, Entry: f.Name, Err: err}
		}
	}

	if d.Log != nil {
		d.Log.Debug().
			Str("archive", archivePath).
			Str("target", targetDir).
			Int("entries", len(r.File)).
			Msg("archive extracted")
	}

	return nil
}

func (d *ZipDecompressor) extractFile(f *zip.File, target string) error {
	if err := d.Fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip file entry: %w", err)
	}
	defer rc.Close()

	outFile, err := d.Fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode(f))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}

	return outFile.Close()
}

// openZip opens archivePath as a zip reader backed by fs.
func openZip(fs afero.Fs, archivePath string) (*zip.Reader, io.Closer, error) {
	file, err := fs.Open(archivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	r, err := zip.NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to open zip: %w", err)
	}

	return r, file, nil
}

// entryName normalizes separators written by Windows archive tools and drops
// leading slashes.
func entryName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimLeft(name, "/")
}

// fileMode keeps permission bits from the archive, falling back to 0644 for
// archives written without Unix attributes.
func fileMode(f *zip.File) os.FileMode {
	perm := f.Mode().Perm()
	if perm == 0 {
		return 0644
	}
	return perm | 0600
}

func dirMode(f *zip.File) os.FileMode {
	perm := f.Mode().Perm()
	if perm == 0 {
		return 0755
	}
	return perm | 0700
}
