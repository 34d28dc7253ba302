package cmd

import (
	"github.com/quantmind-br/vsixextract/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vsixextract",
		Short: "Batch extractor for VSIX packages",
		Long: `Walks a source tree, unpacks every .vsix archive it finds and lays the
payload out under a target installation tree as directed by each
archive's manifest.json.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewExtractCmd(cfg, log))
	cmd.AddCommand(NewInspectCmd(log))
	cmd.AddCommand(NewHistoryCmd(cfg, log))
	cmd.AddCommand(NewCompletionCmd(log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}
