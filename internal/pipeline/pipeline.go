// Package pipeline drives a batch run: it discovers .vsix archives under a
// source tree and pushes each one through decompression, name decoding and
// relocation into a shared installation tree.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quantmind-br/vsixextract/internal/archive"
	"github.com/quantmind-br/vsixextract/internal/fsops"
	"github.com/quantmind-br/vsixextract/internal/normalize"
	"github.com/quantmind-br/vsixextract/internal/relocate"
	"github.com/quantmind-br/vsixextract/internal/walker"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ErrArchivesFailed is returned by a SkipAndContinue run in which at least
// one archive failed.
var ErrArchivesFailed = errors.New("one or more archives failed")

// DefaultTempPrefix names extraction workspaces.
const DefaultTempPrefix = "vsixextract-"

// Normalizer decodes entry names in an extraction workspace.
type Normalizer interface {
	Normalize(ctx context.Context, root string) error
}

// Relocator moves a normalized workspace into the installation tree.
type Relocator interface {
	Relocate(ctx context.Context, sourceDir, installRoot string) (*relocate.Result, error)
}

// Hooks are optional callbacks for progress reporting.
type Hooks struct {
	OnArchiveStart func(archivePath string)
	OnArchiveDone  func(result ArchiveResult)
}

// ArchiveResult is the outcome of one archive.
type ArchiveResult struct {
	Archive     string
	Strategy    relocate.Strategy
	Destination string
	Files       int
	Bytes       int64
	Duration    time.Duration
	Err         error
}

// Failed reports whether the archive failed.
func (r ArchiveResult) Failed() bool { return r.Err != nil }

// Report collects the archives handled by one run, in processing order.
type Report struct {
	RunID    string
	Source   string
	Target   string
	Archives []ArchiveResult
}

// Failures returns the failed archives.
func (r *Report) Failures() []ArchiveResult {
	var failed []ArchiveResult
	for _, a := range r.Archives {
		if a.Failed() {
			failed = append(failed, a)
		}
	}
	return failed
}

// Extractor runs the decompress → normalize → relocate pipeline.
type Extractor struct {
	fs           afero.Fs
	decompressor archive.Decompressor
	normalizer   Normalizer
	relocator    Relocator
	tempPrefix   string
	policy       ErrorPolicy
	ignoreCase   bool
	hooks        Hooks
	log          *zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDecompressor replaces the zip decompressor.
func WithDecompressor(d archive.Decompressor) Option {
	return func(e *Extractor) { e.decompressor = d }
}

// WithNormalizer replaces the name normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(e *Extractor) { e.normalizer = n }
}

// WithRelocator replaces the relocator.
func WithRelocator(r Relocator) Option {
	return func(e *Extractor) { e.relocator = r }
}

// WithErrorPolicy sets the failure policy. The default is AbortOnError.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(e *Extractor) { e.policy = p }
}

// WithIgnoreCase matches the archive extension case-insensitively.
func WithIgnoreCase(ignore bool) Option {
	return func(e *Extractor) { e.ignoreCase = ignore }
}

// WithHooks installs progress callbacks.
func WithHooks(h Hooks) Option {
	return func(e *Extractor) { e.hooks = h }
}

// WithTempPrefix sets the workspace directory prefix.
func WithTempPrefix(prefix string) Option {
	return func(e *Extractor) {
		if prefix != "" {
			e.tempPrefix = prefix
		}
	}
}

// New creates an Extractor wired with the zip decompressor, the name
// normalizer and the manifest relocator over fs.
func New(fs afero.Fs, log *zerolog.Logger, opts ...Option) *Extractor {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	e := &Extractor{
		fs:           fs,
		decompressor: archive.NewZipDecompressor(fs, log),
		normalizer:   normalize.New(fs, log),
		relocator:    relocate.New(fs, log),
		tempPrefix:   DefaultTempPrefix,
		policy:       AbortOnError,
		log:          log,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run processes every archive below sourceRoot, one at a time, into
// targetRoot. Under AbortOnError the first failure ends the run and is
// returned; under SkipAndContinue failures are kept in the report and
// ErrArchivesFailed is returned at the end. The report is never nil.
func (e *Extractor) Run(ctx context.Context, sourceRoot, targetRoot string) (*Report, error) {
	report := &Report{
		RunID:  uuid.NewString(),
		Source: sourceRoot,
		Target: targetRoot,
	}

	log := e.log.With().Str("run_id", report.RunID).Logger()
	log.Info().
		Str("source", sourceRoot).
		Str("target", targetRoot).
		Str("policy", e.policy.String()).
		Msg("starting extraction run")

	visit := walker.VisitorFunc(func(path string) (string, error) {
		if !fsops.IsRegular(e.fs, path) || !IsArchive(path, e.ignoreCase) {
			return path, nil
		}

		result := e.processArchive(ctx, &log, path, targetRoot)
		report.Archives = append(report.Archives, result)

		if result.Failed() && e.policy == AbortOnError {
			return "", fmt.Errorf("process %s: %w", path, result.Err)
		}
		return path, nil
	})

	if err := walker.WalkContext(ctx, e.fs, sourceRoot, visit); err != nil {
		log.Error().Err(err).Msg("extraction run aborted")
		return report, err
	}

	if failed := report.Failures(); len(failed) > 0 {
		log.Warn().
			Int("failed", len(failed)).
			Int("archives", len(report.Archives)).
			Msg("extraction run finished with failures")
		return report, fmt.Errorf("%w: %d of %d", ErrArchivesFailed, len(failed), len(report.Archives))
	}

	log.Info().Int("archives", len(report.Archives)).Msg("extraction run finished")
	return report, nil
}

// processArchive handles one archive inside its own workspace. The workspace
// is released on every exit path.
func (e *Extractor) processArchive(ctx context.Context, log *zerolog.Logger, archivePath, targetRoot string) (result ArchiveResult) {
	start := time.Now()
	result.Archive = archivePath

	log.Info().Str("archive", archivePath).Msg("processing archive")
	if e.hooks.OnArchiveStart != nil {
		e.hooks.OnArchiveStart(archivePath)
	}

	defer func() {
		result.Duration = time.Since(start)
		if result.Err != nil {
			log.Error().Err(result.Err).Str("archive", archivePath).Msg("archive failed")
		}
		if e.hooks.OnArchiveDone != nil {
			e.hooks.OnArchiveDone(result)
		}
	}()

	ws, err := fsops.NewWorkspace(e.fs, e.tempPrefix)
	if err != nil {
		result.Err = err
		return result
	}
	defer func() {
		if err := ws.Release(); err != nil {
			log.Warn().Err(err).Str("workspace", ws.Path()).Msg("failed to remove workspace")
		}
	}()

	if err := e.decompressor.Decompress(ctx, archivePath, ws.Path()); err != nil {
		result.Err = err
		return result
	}

	if err := e.normalizer.Normalize(ctx, ws.Path()); err != nil {
		result.Err = fmt.Errorf("normalize names: %w", err)
		return result
	}

	rel, err := e.relocator.Relocate(ctx, ws.Path(), targetRoot)
	if err != nil {
		result.Err = err
		return result
	}

	result.Strategy = rel.Strategy
	result.Destination = rel.Destination
	result.Files = rel.Files
	result.Bytes = rel.Bytes

	log.Info().
		Str("archive", archivePath).
		Str("strategy", string(rel.Strategy)).
		Str("destination", rel.Destination).
		Int("files", rel.Files).
		Msg("archive relocated")

	return result
}
