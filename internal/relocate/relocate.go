// Package relocate copies a normalized extraction workspace into the
// installation tree according to the payload's manifest.
package relocate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/quantmind-br/vsixextract/internal/fsops"
	"github.com/quantmind-br/vsixextract/internal/manifest"
	"github.com/quantmind-br/vsixextract/internal/pathtmpl"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ContentsDir is copied into the installation root when the manifest has no
// extensionDir.
const ContentsDir = "Contents"

var (
	// ErrRelocate is matched by every error returned from Relocate.
	ErrRelocate = errors.New("relocation failed")

	// ErrPathTooLong is additionally matched when a destination path hits the
	// filesystem path-length limit.
	ErrPathTooLong = errors.New("the resulting output path may exceed the filesystem path-length limit")
)

// Strategy tells which manifest shape drove a relocation.
type Strategy string

const (
	// StrategyExtensionDir copies the whole payload into the resolved extensionDir.
	StrategyExtensionDir Strategy = "extension-dir"
	// StrategyContents copies the children of Contents/ into the installation root.
	StrategyContents Strategy = "contents"
	// StrategyNone means no extensionDir and no Contents/; nothing was copied.
	StrategyNone Strategy = "none"
)

// Result summarizes one relocation.
type Result struct {
	Strategy    Strategy
	Destination string
	Files       int
	Bytes       int64
}

// Relocator moves extracted payloads into an installation tree.
type Relocator struct {
	Fs  afero.Fs
	Log *zerolog.Logger
}

// New creates a Relocator.
func New(fs afero.Fs, log *zerolog.Logger) *Relocator {
	return &Relocator{Fs: fs, Log: log}
}

// Relocate reads <sourceDir>/manifest.json and copies the payload below
// installRoot. Files at the destination are overwritten and directories are
// merged. A failure part way leaves the destination partially populated.
func (r *Relocator) Relocate(ctx context.Context, sourceDir, installRoot string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := manifest.Load(r.Fs, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRelocate, err)
	}

	if template, ok := m.ExtensionDir(); ok {
		return r.relocateToExtensionDir(sourceDir, installRoot, template)
	}
	return r.relocateContents(sourceDir, installRoot)
}

func (r *Relocator) relocateToExtensionDir(sourceDir, installRoot, template string) (*Result, error) {
	dest, err := pathtmpl.Resolve(template, installRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve extensionDir: %w", ErrRelocate, err)
	}

	if err := fsops.EnsureDir(r.Fs, dest, 0755); err != nil {
		return nil, wrapIOError("create target directories", err)
	}

	stats, err := fsops.CopyTree(r.Fs, sourceDir, dest)
	if err != nil {
		return nil, wrapIOError("copy payload", err)
	}

	r.logDone(StrategyExtensionDir, dest, stats)

	return &Result{
		Strategy:    StrategyExtensionDir,
		Destination: dest,
		Files:       stats.Files,
		Bytes:       stats.Bytes,
	}, nil
}

func (r *Relocator) relocateContents(sourceDir, installRoot string) (*Result, error) {
	if err := fsops.EnsureDir(r.Fs, installRoot, 0755); err != nil {
		return nil, wrapIOError("create target directories", err)
	}

	contents := filepath.Join(sourceDir, ContentsDir)
	if !fsops.IsDir(r.Fs, contents) {
		r.logDone(StrategyNone, installRoot, fsops.CopyStats{})
		return &Result{Strategy: StrategyNone, Destination: installRoot}, nil
	}

	stats, err := fsops.CopyTree(r.Fs, contents, installRoot)
	if err != nil {
		return nil, wrapIOError("copy Contents", err)
	}

	r.logDone(StrategyContents, installRoot, stats)

	return &Result{
		Strategy:    StrategyContents,
		Destination: installRoot,
		Files:       stats.Files,
		Bytes:       stats.Bytes,
	}, nil
}

func (r *Relocator) logDone(strategy Strategy, dest string, stats fsops.CopyStats) {
	if r.Log == nil {
		return
	}
	r.Log.Debug().
		Str("strategy", string(strategy)).
		Str("destination", dest).
		Int("files", stats.Files).
		Int64("bytes", stats.Bytes).
		Msg("payload relocated")
}

// wrapIOError tags err with ErrRelocate, and with ErrPathTooLong when the OS
// reported a path-length failure.
func wrapIOError(op string, err error) error {
	if isPathTooLong(err) {
		return fmt.Errorf("%w: %s: %w (%w)", ErrRelocate, op, err, ErrPathTooLong)
	}
	return fmt.Errorf("%w: %s: %w", ErrRelocate, op, err)
}
