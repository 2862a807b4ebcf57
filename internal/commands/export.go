package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pennywyse/pennywyse/internal/export"
	"github.com/pennywyse/pennywyse/internal/summary"
)

func newExportCommand(repo *string) *cobra.Command {
	var format, out, from, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.XLSX && out == "" {
				return fmt.Errorf("--out is required for xlsx")
			}

			p, err := openProject(*repo, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			txns, err := p.store.Read()
			if err != nil {
				return err
			}
			start, err := parseDay("--from", from)
			if err != nil {
				return err
			}
			end, err := parseDay("--to", to)
			if err != nil {
				return err
			}
			txns = summary.Filter(txns, start, end)

			if out == "" {
				return export.Write(cmd.OutOrStdout(), f, txns)
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := export.Write(file, f, txns); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d transactions to %s\n", len(txns), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout, csv only)")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")

	return cmd
}
