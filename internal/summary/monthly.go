package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywyse/pennywyse/internal/model"
)

// MonthFormat is the layout of Month keys.
const MonthFormat = "2006-01"

// Month is a summary of one calendar month.
type Month struct {
	Month string `json:"month"` // "2025-01"
	Summary
}

// Monthly groups txns by calendar month, newest month first.
func Monthly(txns []model.Transaction) []Month {
	groups := make(map[string][]model.Transaction)
	for _, t := range txns {
		key := t.Date.Format(MonthFormat)
		groups[key] = append(groups[key], t)
	}

	months := make([]Month, 0, len(groups))
	for key, g := range groups {
		months = append(months, Month{Month: key, Summary: Compute(g)})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })
	return months
}

// InMonth returns the transactions in the calendar month containing m.
func InMonth(txns []model.Transaction, m time.Time) []model.Transaction {
	start := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Filter(txns, start, end)
}

// BudgetStatus compares one category's spend against its monthly budget.
type BudgetStatus struct {
	Category  string          `json:"category"`
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"` // negative when over budget
	Over      bool            `json:"over"`
}

// Budgets reports spend against budget for every debit category with a
// budget, using the transactions of the month containing m.
func Budgets(txns []model.Transaction, cats []model.Category, m time.Time) []BudgetStatus {
	spent := make(map[string]decimal.Decimal)
	for _, ct := range Compute(InMonth(txns, m)).ByCategory {
		spent[ct.Category] = ct.Total
	}

	var out []BudgetStatus
	for _, c := range cats {
		if c.Type != model.CategoryTypeDebit || !c.HasBudget() {
			continue
		}
		s := spent[c.Name]
		remaining := c.MonthlyBudget.Sub(s)
		out = append(out, BudgetStatus{
			Category:  c.Name,
			Budget:    c.MonthlyBudget,
			Spent:     s,
			Remaining: remaining,
			Over:      remaining.IsNegative(),
		})
	}
	return out
}
