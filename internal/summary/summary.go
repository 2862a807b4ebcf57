// Package summary derives dashboard metrics from a transaction set.
package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywyse/pennywyse/internal/model"
)

// NoCategory is the TopCategory sentinel when there are no expenses.
const NoCategory = "N/A"

// IncomeCategory is the category LastIncome looks for.
const IncomeCategory = "Income"

// CategoryTotal is the absolute expense total for one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// Summary holds the headline figures for a set of transactions.
type Summary struct {
	Count         int                `json:"count"`
	TotalIncome   decimal.Decimal    `json:"total_income"`
	TotalExpenses decimal.Decimal    `json:"total_expenses"`
	NetBalance    decimal.Decimal    `json:"net_balance"`
	TopCategory   string             `json:"top_category"`
	ByCategory    []CategoryTotal    `json:"by_category"`
	LastIncome    *model.Transaction `json:"last_income,omitempty"`
}

// Compute summarizes txns. Empty input yields zeros and NoCategory.
func Compute(txns []model.Transaction) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	byCat := make(map[string]*CategoryTotal)
	var last *model.Transaction

	for i, t := range txns {
		switch {
		case t.IsCredit():
			income = income.Add(t.Amount)
			if t.Category == IncomeCategory && (last == nil || t.Date.After(last.Date)) {
				last = &txns[i]
			}
		case t.IsDebit():
			expenses = expenses.Add(t.Amount)
			name := t.Category
			if name == "" {
				name = "Other"
			}
			ct, ok := byCat[name]
			if !ok {
				ct = &CategoryTotal{Category: name, Total: decimal.Zero}
				byCat[name] = ct
			}
			ct.Total = ct.Total.Add(t.Amount.Abs())
			ct.Count++
		}
	}

	totals := make([]CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		ct.Total = ct.Total.Round(2)
		totals = append(totals, *ct)
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Category < totals[j].Category
	})

	s := Summary{
		Count:         len(txns),
		TotalIncome:   income.Round(2),
		TotalExpenses: expenses.Abs().Round(2),
		TopCategory:   NoCategory,
		ByCategory:    totals,
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpenses)
	if len(totals) > 0 {
		s.TopCategory = totals[0].Category
	}
	if last != nil {
		cp := *last
		s.LastIncome = &cp
	}
	return s
}

// Filter returns transactions dated within [from, to]. A zero bound is open.
func Filter(txns []model.Transaction, from, to time.Time) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ByCategory returns the transactions filed under category, ignoring case.
func ByCategory(txns []model.Transaction, category string) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if strings.EqualFold(t.Category, category) {
			out = append(out, t)
		}
	}
	return out
}
