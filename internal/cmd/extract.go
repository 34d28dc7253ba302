package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/quantmind-br/vsixextract/internal/config"
	"github.com/quantmind-br/vsixextract/internal/db"
	"github.com/quantmind-br/vsixextract/internal/fsops"
	"github.com/quantmind-br/vsixextract/internal/logging"
	"github.com/quantmind-br/vsixextract/internal/pipeline"
	"github.com/quantmind-br/vsixextract/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ErrLocked is returned when another run holds the lock file
var ErrLocked = errors.New("another extraction is already running")

// NewExtractCmd creates the extract command
func NewExtractCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		continueOnError bool
		ignoreCase      bool
		noHistory       bool
		timeoutSecs     int
	)

	cmd := &cobra.Command{
		Use:   "extract <source> <target>",
		Short: "Extract every .vsix below source into target",
		Long: `Recursively finds .vsix archives below the source directory, unpacks each
one into a temporary workspace, decodes percent-encoded entry names and
copies the payload into the target installation tree. Archives that carry
an extensionDir in manifest.json are placed under that directory, others
contribute the children of their Contents folder.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			source, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve source: %w", err)
			}
			target, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve target: %w", err)
			}

			fs := afero.NewOsFs()
			if !fsops.IsDir(fs, source) {
				ui.PrintError(errOut, "source directory not found: %s", source)
				return fmt.Errorf("source not found: %s", source)
			}

			policy, err := pipeline.ParseErrorPolicy(cfg.Extract.ErrorPolicy)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("continue-on-error") {
				policy = pipeline.AbortOnError
				if continueOnError {
					policy = pipeline.SkipAndContinue
				}
			}
			if !cmd.Flags().Changed("ignore-case") {
				ignoreCase = cfg.Extract.IgnoreCase
			}
			recordHistory := cfg.Extract.History && !noHistory

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeoutSecs > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
				defer cancel()
			}

			unlock, err := acquireRunLock(cfg.Paths.LockFile)
			if err != nil {
				ui.PrintError(errOut, "%v", err)
				return err
			}
			defer unlock()

			var database *db.DB
			if recordHistory {
				database, err = openHistory(ctx, cfg)
				if err != nil {
					ui.PrintError(errOut, "failed to open history: %v", err)
					return err
				}
				defer database.Close()
			}

			spinner := ui.NewSpinner(errOut, "extracting", logging.IsTerminal(errOut))
			hooks := pipeline.Hooks{
				OnArchiveStart: func(archivePath string) {
					spinner.Step(filepath.Base(archivePath))
				},
				OnArchiveDone: func(result pipeline.ArchiveResult) {
					printArchiveResult(out, source, result)
				},
			}

			extractor := pipeline.New(fs, log,
				pipeline.WithErrorPolicy(policy),
				pipeline.WithIgnoreCase(ignoreCase),
				pipeline.WithTempPrefix(cfg.Extract.TempPrefix),
				pipeline.WithHooks(hooks),
			)

			report, runErr := extractor.Run(ctx, source, target)
			_ = spinner.Finish()

			if database != nil {
				if err := recordReport(ctx, database, report); err != nil {
					log.Warn().Err(err).Str("run_id", report.RunID).Msg("failed to record history")
					ui.PrintWarning(errOut, "history not recorded: %v", err)
				}
			}

			printSummary(out, report)

			if runErr != nil {
				switch {
				case errors.Is(runErr, pipeline.ErrArchivesFailed):
					ui.PrintWarning(errOut, "%v", runErr)
				case len(report.Failures()) > 0:
					// the failing archive was already reported by OnArchiveDone
					ui.PrintWarning(errOut, "run stopped at the first failing archive; use --continue-on-error to skip it")
				default:
					ui.PrintError(errOut, "extraction aborted: %v", runErr)
				}
				return runErr
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "skip failing archives instead of aborting the run")
	cmd.Flags().BoolVar(&ignoreCase, "ignore-case", false, "match the .vsix extension case-insensitively")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history database")
	cmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "run timeout in seconds (0 disables)")

	return cmd
}

// acquireRunLock takes the exclusive run lock. An empty path disables locking.
func acquireRunLock(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock held on %s)", ErrLocked, path)
	}

	return func() { _ = lock.Unlock() }, nil
}

func recordReport(ctx context.Context, database *db.DB, report *pipeline.Report) error {
	// the run context may already be cancelled; history is still written
	ctx = context.WithoutCancel(ctx)

	for _, a := range report.Archives {
		e := &db.Extraction{
			RunID:       report.RunID,
			ArchivePath: a.Archive,
			Destination: a.Destination,
			Strategy:    string(a.Strategy),
			Files:       a.Files,
			Bytes:       a.Bytes,
			Status:      db.StatusSuccess,
		}
		if a.Failed() {
			e.Status = db.StatusFailed
			e.Error = a.Err.Error()
		}
		if err := database.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func printArchiveResult(w io.Writer, source string, result pipeline.ArchiveResult) {
	name := result.Archive
	if rel, err := filepath.Rel(source, result.Archive); err == nil {
		name = rel
	}

	if result.Failed() {
		ui.PrintError(w, "%s: %v", name, result.Err)
		return
	}

	ui.PrintSuccess(w, "%s %s %s [%s, %d files, %s]",
		name, ui.Arrow(), result.Destination,
		ui.ColorizeStrategy(string(result.Strategy)),
		result.Files, humanize.Bytes(uint64(result.Bytes)))
}

func printSummary(w io.Writer, report *pipeline.Report) {
	var files int
	var bytes int64
	for _, a := range report.Archives {
		files += a.Files
		bytes += a.Bytes
	}

	ui.PrintHeader(w, "Summary")
	ui.PrintKeyValue(w, "Run", report.RunID)
	ui.PrintKeyValue(w, "Archives", fmt.Sprintf("%d", len(report.Archives)))
	ui.PrintKeyValue(w, "Failed", fmt.Sprintf("%d", len(report.Failures())))
	ui.PrintKeyValue(w, "Files", humanize.Comma(int64(files)))
	ui.PrintKeyValue(w, "Size", humanize.Bytes(uint64(bytes)))
}
