package model

import "github.com/shopspring/decimal"

// CategoryType tags a category as money out or money in.
type CategoryType string

const (
	CategoryTypeDebit  CategoryType = "debit"
	CategoryTypeCredit CategoryType = "credit"
)

// Category represents a row in categories.csv.
type Category struct {
	Name          string          `json:"name"`
	Type          CategoryType    `json:"type"`
	Icon          string          `json:"icon,omitempty"`
	Color         string          `json:"color,omitempty"`
	Keywords      []string        `json:"keywords,omitempty"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"` // zero = no budget
}

// HasBudget reports whether a monthly budget is set.
func (c Category) HasBudget() bool {
	return c.MonthlyBudget.IsPositive()
}
