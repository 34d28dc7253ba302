package archive

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
)

// Entry describes one member of an archive without extracting it.
type Entry struct {
	Name           string
	Size           uint64
	CompressedSize uint64
	Modified       time.Time
	IsDir          bool
}

// ListEntries returns the entries of archivePath in archive order.
func ListEntries(fs afero.Fs, archivePath string) ([]Entry, error) {
	r, closer, err := openZip(fs, archivePath)
	if err != nil {
		return nil, &ExtractError{Archive: archivePath, Err: err}
	}
	defer closer.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		entries = append(entries, Entry{
			Name:           entryName(f.Name),
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			Modified:       f.Modified,
			IsDir:          f.FileInfo().IsDir(),
		})
	}

	return entries, nil
}

// ReadFile returns the contents of the named entry. Separators in the stored
// names are normalized before comparison.
func ReadFile(fs afero.Fs, archivePath, name string) ([]byte, error) {
	r, closer, err := openZip(fs, archivePath)
	if err != nil {
		return nil, &ExtractError{Archive: archivePath, Err: err}
	}
	defer closer.Close()

	for _, f := range r.File {
		if entryName(f.Name) != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, &ExtractError{Archive: archivePath, Entry: f.Name, Err: err}
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, &ExtractError{Archive: archivePath, Entry: f.Name, Err: err}
		}
		return data, nil
	}

	return nil, &ExtractError{Archive: archivePath, Entry: name, Err: fmt.Errorf("entry not found")}
}
