package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical calendar-day layout used for keys and storage.
const DateFormat = "2006-01-02"

// Transaction is one row of the ledger.
type Transaction struct {
	Date          time.Time       `json:"date"`                     // calendar day, UTC midnight
	Particulars   string          `json:"particulars"`              // free-text description
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`                   // negative = expense, positive = income
	TransactionID string          `json:"transaction_id,omitempty"` // derived; empty when no reference was found
}

// IsDebit reports whether the transaction is an expense.
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// IsCredit reports whether the transaction is income.
func (t Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// Day returns the transaction date as "YYYY-MM-DD".
func (t Transaction) Day() string {
	return t.Date.Format(DateFormat)
}

// DateAmountKey identifies a transaction by calendar day and exact amount.
// "2025-01-03|-450"
func (t Transaction) DateAmountKey() string {
	return t.Day() + "|" + t.Amount.String()
}
