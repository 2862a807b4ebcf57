package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pennywyse/pennywyse/internal/ledger"
)

func newCheckCommand(repo *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			txns, err := p.store.Read()
			if err != nil {
				return err
			}

			errs := ledger.Check(txns)
			out := cmd.OutOrStdout()
			for _, e := range errs {
				fmt.Fprintln(out, e.Error())
			}
			if len(errs) > 0 {
				return fmt.Errorf("ledger has %d problems", len(errs))
			}
			fmt.Fprintf(out, "Ledger OK: %d transactions\n", len(txns))
			return nil
		},
	}
}
