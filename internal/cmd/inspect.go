package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/vsixextract/internal/archive"
	"github.com/quantmind-br/vsixextract/internal/manifest"
	"github.com/quantmind-br/vsixextract/internal/normalize"
	"github.com/quantmind-br/vsixextract/internal/relocate"
	"github.com/quantmind-br/vsixextract/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// archiveSummary is what inspect reports about one archive
type archiveSummary struct {
	Path         string          `json:"path"`
	HasManifest  bool            `json:"has_manifest"`
	ExtensionDir *string         `json:"extension_dir,omitempty"`
	Strategy     string          `json:"strategy"`
	TotalSize    uint64          `json:"total_size"`
	Skipped      []string        `json:"skipped,omitempty"`
	Entries      []archive.Entry `json:"entries"`
}

// NewInspectCmd creates the inspect command
func NewInspectCmd(log *zerolog.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Show the manifest and entries of a .vsix without extracting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := inspectArchive(afero.NewOsFs(), args[0])
			if err != nil {
				ui.PrintError(cmd.ErrOrStderr(), "%v", err)
				return err
			}

			log.Debug().
				Str("archive", summary.Path).
				Int("entries", len(summary.Entries)).
				Msg("inspected archive")

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			printInspection(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	return cmd
}

func inspectArchive(fs afero.Fs, path string) (*archiveSummary, error) {
	entries, err := archive.ListEntries(fs, path)
	if err != nil {
		return nil, err
	}

	summary := &archiveSummary{
		Path:     path,
		Strategy: string(relocate.StrategyNone),
		Entries:  entries,
	}

	hasContents := false
	for _, e := range entries {
		summary.TotalSize += e.Size
		switch {
		case e.Name == manifest.FileName:
			summary.HasManifest = true
		case e.Name == relocate.ContentsDir+"/" || strings.HasPrefix(e.Name, relocate.ContentsDir+"/"):
			hasContents = true
		}
	}

	if summary.HasManifest {
		data, err := archive.ReadFile(fs, path, manifest.FileName)
		if err != nil {
			return nil, err
		}
		m, err := manifest.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if dir, ok := m.ExtensionDir(); ok {
			summary.ExtensionDir = &dir
			summary.Strategy = string(relocate.StrategyExtensionDir)
		}
	}

	if summary.ExtensionDir == nil {
		if hasContents {
			summary.Strategy = string(relocate.StrategyContents)
		}
		summary.Skipped = skippedTopLevel(entries)
	}

	return summary, nil
}

// skippedTopLevel lists the top-level names a relocation without
// extensionDir leaves behind: everything except Contents and the manifest.
func skippedTopLevel(entries []archive.Entry) []string {
	seen := make(map[string]bool)
	var skipped []string
	for _, e := range entries {
		top, _, _ := strings.Cut(e.Name, "/")
		if top == "" || top == relocate.ContentsDir || top == manifest.FileName || seen[top] {
			continue
		}
		seen[top] = true
		skipped = append(skipped, top)
	}
	return skipped
}

// decodedPath applies the entry name decoding to every segment of name.
// Segments that cannot be decoded are kept as stored.
func decodedPath(name string) string {
	segments := strings.Split(strings.TrimSuffix(name, "/"), "/")
	for i, s := range segments {
		if decoded, changed, err := normalize.DecodeName(s); err == nil && changed {
			segments[i] = decoded
		}
	}
	return strings.Join(segments, "/")
}

func printInspection(w io.Writer, s *archiveSummary) {
	ui.PrintHeader(w, "Archive")
	ui.PrintKeyValue(w, "Path", s.Path)
	ui.PrintKeyValue(w, "Entries", humanize.Comma(int64(len(s.Entries))))
	ui.PrintKeyValue(w, "Size", humanize.Bytes(s.TotalSize))

	manifestState := "missing"
	if s.HasManifest {
		manifestState = "present"
	}
	ui.PrintKeyValue(w, "Manifest", manifestState)

	if s.ExtensionDir != nil {
		ui.PrintKeyValue(w, "Extension dir", *s.ExtensionDir)
	}
	ui.PrintKeyValue(w, "Strategy", ui.ColorizeStrategy(s.Strategy))

	if len(s.Skipped) > 0 {
		ui.PrintHeader(w, "Not installed")
		ui.PrintList(w, s.Skipped)
	}
	fmt.Fprintln(w)

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Entry", "Decoded", "Size", "Compressed", "Modified"}),
		tablewriter.WithAlignment(tw.Alignment{tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignLeft}),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, e := range s.Entries {
		decoded := decodedPath(e.Name)
		if decoded == strings.TrimSuffix(e.Name, "/") {
			decoded = "-"
		}

		size := "-"
		compressed := "-"
		if !e.IsDir {
			size = humanize.Bytes(e.Size)
			compressed = humanize.Bytes(e.CompressedSize)
		}

		modified := "-"
		if !e.Modified.IsZero() {
			modified = humanize.Time(e.Modified)
		}

		table.Append(e.Name, decoded, size, compressed, modified)
	}

	table.Render()
}
