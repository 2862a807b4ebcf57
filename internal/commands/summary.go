package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pennywyse/pennywyse/internal/model"
	"github.com/pennywyse/pennywyse/internal/summary"
)

func newSummaryCommand(repo *string) *cobra.Command {
	var from, to, month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and top spending category",
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

			var m time.Time
			if month != "" {
				if from != "" || to != "" {
					return fmt.Errorf("--month cannot be combined with --from/--to")
				}
				if m, err = time.Parse(summary.MonthFormat, month); err != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", err)
				}
				txns = summary.InMonth(txns, m)
			} else {
				start, err := parseDay("--from", from)
				if err != nil {
					return err
				}
				end, err := parseDay("--to", to)
				if err != nil {
					return err
				}
				txns = summary.Filter(txns, start, end)
			}

			out := cmd.OutOrStdout()
			printSummary(out, summary.Compute(txns), p.cfg.Profile.Currency)
			if !m.IsZero() {
				printBudgets(out, summary.Budgets(txns, p.categories.ByType(model.CategoryTypeDebit), m))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&month, "month", "", "calendar month, YYYY-MM (adds budget status)")

	return cmd
}

func parseDay(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.DateFormat, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", flag, err)
	}
	return t, nil
}

func printSummary(w io.Writer, s summary.Summary, currency string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Transactions\t%d\n", s.Count)
	fmt.Fprintf(tw, "Total income\t%s %s\n", currency, s.TotalIncome.StringFixed(2))
	fmt.Fprintf(tw, "Total expenses\t%s %s\n", currency, s.TotalExpenses.StringFixed(2))
	fmt.Fprintf(tw, "Net balance\t%s %s\n", currency, s.NetBalance.StringFixed(2))
	fmt.Fprintf(tw, "Top category\t%s\n", s.TopCategory)
	if s.LastIncome != nil {
		fmt.Fprintf(tw, "Last income\t%s %s on %s\n", currency, s.LastIncome.Amount.StringFixed(2), s.LastIncome.Day())
	}
	tw.Flush()

	if len(s.ByCategory) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSpending by category:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ct := range s.ByCategory {
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", ct.Category, ct.Total.StringFixed(2), ct.Count)
	}
	tw.Flush()
}

func printBudgets(w io.Writer, budgets []summary.BudgetStatus) {
	if len(budgets) == 0 {
		return
	}
	fmt.Fprintln(w, "\nBudgets:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range budgets {
		flag := ""
		if b.Over {
			flag = "OVER"
		}
		fmt.Fprintf(tw, "  %s\t%s / %s\t%s\n", b.Category, b.Spent.StringFixed(2), b.Budget.StringFixed(2), flag)
	}
	tw.Flush()
}
