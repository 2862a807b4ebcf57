package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pennywyse/pennywyse/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var repo string

	rootCmd := &cobra.Command{
		Use:     "pennywyse",
		Short:   "Personal finance ledger fed by AI-parsed statements",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&repo, "repo", ".", "project directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newIngestCommand(&repo),
		newImportCommand(&repo),
		newSummaryCommand(&repo),
		newCategorizeCommand(&repo),
		newCheckCommand(&repo),
		newExportCommand(&repo),
		newServeCommand(&repo),
	)

	return rootCmd
}
