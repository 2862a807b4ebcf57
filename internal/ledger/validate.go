package ledger

import (
	"fmt"
	"strings"

	"github.com/pennywyse/pennywyse/internal/id"
	"github.com/pennywyse/pennywyse/internal/model"
)

// Rule names the ledger invariant a ValidationError violates.
type Rule string

const (
	RuleDate        Rule = "date"
	RuleParticulars Rule = "particulars"
	RuleUniqueID    Rule = "unique_id"
	RuleDateAmount  Rule = "unique_date_amount"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Rule        Rule
	Row         int // 1-based data row in the combined ledger
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [row %d]: %s", e.Rule, e.Row, e.Description)
}

// ValidateTransactions checks the rows in added as if appended after existing.
// Rows in existing are trusted except as the other side of a uniqueness check.
func ValidateTransactions(existing, added []model.Transaction) []ValidationError {
	var errs []ValidationError

	ids := make(map[string]int, len(existing)+len(added))
	for i, t := range existing {
		if key := id.Normalize(t.TransactionID); key != "" {
			if _, ok := ids[key]; !ok {
				ids[key] = i + 1
			}
		}
	}

	for i, t := range added {
		row := len(existing) + i + 1

		if t.Date.IsZero() {
			errs = append(errs, ValidationError{Rule: RuleDate, Row: row, Description: "missing date"})
		}
		if strings.TrimSpace(t.Particulars) == "" {
			errs = append(errs, ValidationError{Rule: RuleParticulars, Row: row, Description: "empty particulars"})
		}
		if key := id.Normalize(t.TransactionID); key != "" {
			if first, ok := ids[key]; ok {
				errs = append(errs, ValidationError{
					Rule:        RuleUniqueID,
					Row:         row,
					Description: fmt.Sprintf("transaction id %s already on row %d", key, first),
				})
			} else {
				ids[key] = row
			}
		}
	}
	return errs
}

// Check reports every invariant violation in a stored ledger, including the
// (date, amount) guard for rows without an ID. Used by `pennywyse check`.
func Check(txns []model.Transaction) []ValidationError {
	errs := ValidateTransactions(nil, txns)

	pairs := make(map[string]int)
	for i, t := range txns {
		if id.Normalize(t.TransactionID) != "" {
			continue
		}
		key := t.DateAmountKey()
		if first, ok := pairs[key]; ok {
			errs = append(errs, ValidationError{
				Rule:        RuleDateAmount,
				Row:         i + 1,
				Description: fmt.Sprintf("same date and amount as row %d", first),
			})
			continue
		}
		pairs[key] = i + 1
	}
	return errs
}
