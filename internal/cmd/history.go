package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/vsixextract/internal/config"
	"github.com/quantmind-br/vsixextract/internal/db"
	"github.com/quantmind-br/vsixextract/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		filter     string
		runID      string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously extracted archives",
		Long:  `List the archives recorded by earlier extract runs, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			database, err := openHistory(ctx, cfg)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to open history: %v", err)
				return err
			}
			defer database.Close()

			var records []db.Extraction
			if runID != "" {
				records, err = database.ListByRun(ctx, runID)
			} else {
				records, err = database.List(ctx)
			}
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to list history: %v", err)
				return fmt.Errorf("list history: %w", err)
			}

			records = ui.FuzzyFilter(filter, records, func(e db.Extraction) string {
				return e.ArchivePath
			})
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			log.Debug().Int("records", len(records)).Msg("listed history")

			if jsonOutput {
				if records == nil {
					records = []db.Extraction{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				if filter != "" || runID != "" {
					ui.PrintWarning(out, "No extractions found matching filters")
				} else {
					ui.PrintInfo(out, "No extractions recorded")
				}
				return nil
			}

			printHistoryTable(out, records)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&filter, "filter", "", "fuzzy filter on the archive path")
	cmd.Flags().StringVar(&runID, "run", "", "show a single run")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n records (0 for all)")

	cmd.AddCommand(newHistoryClearCmd(cfg, log))

	return cmd
}

func newHistoryClearCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded extractions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !yes {
				confirmed, err := ui.ConfirmDangerousAction(out, "clear the extraction history", cfg.Paths.DBFile)
				if err != nil {
					return err
				}
				if !confirmed {
					ui.PrintInfo(out, "History left untouched")
					return nil
				}
			}

			database, err := openHistory(ctx, cfg)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to open history: %v", err)
				return err
			}
			defer database.Close()

			deleted, err := database.Clear(ctx)
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "failed to clear history: %v", err)
				return err
			}

			log.Info().Int64("deleted", deleted).Msg("history cleared")
			ui.PrintSuccess(out, "Removed %d record(s)", deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func printHistoryTable(w io.Writer, records []db.Extraction) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Date", "Run", "Archive", "Strategy", "Files", "Size", "Status"}),
		tablewriter.WithAlignment(tw.MakeAlign(7, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	for _, e := range records {
		strategy := e.Strategy
		if strategy == "" {
			strategy = "-"
		}

		table.Append(
			e.ExtractedAt.Local().Format("2006-01-02 15:04"),
			shortID(e.RunID),
			e.ArchivePath,
			ui.ColorizeStrategy(strategy),
			fmt.Sprintf("%d", e.Files),
			humanize.Bytes(uint64(e.Bytes)),
			ui.ColorizeStatus(e.Status),
		)
	}

	table.Render()
}
