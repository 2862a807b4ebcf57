package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategorizeCommand(repo *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <description>",
		Short: "Show which category a transaction description falls into",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.categorizer().Classify(strings.Join(args, " ")))
			return nil
		},
	}
}
