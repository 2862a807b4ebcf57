package importer

import (
	"fmt"

	"github.com/pennywyse/pennywyse/internal/model"
)

// RowError describes why a candidate row was dropped.
type RowError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
}

// ValidatedBatch holds candidates that passed schema validation, in parse order.
type ValidatedBatch struct {
	Transactions []model.Transaction
}

// Len returns the number of validated transactions.
func (b ValidatedBatch) Len() int {
	return len(b.Transactions)
}

// Validate converts candidates to transactions. Rows without a valid date,
// amount or description are dropped and reported; the rest of the batch is kept.
func (t *Table) Validate() (ValidatedBatch, []RowError) {
	var batch ValidatedBatch
	var errs []RowError
	if t == nil {
		return batch, nil
	}

	for _, c := range t.Candidates {
		if rerr, ok := checkCandidate(c); !ok {
			errs = append(errs, rerr)
			continue
		}
		batch.Transactions = append(batch.Transactions, model.Transaction{
			Date:          c.Date,
			Particulars:   c.Particulars,
			Category:      c.Category,
			Amount:        c.Amount.Decimal,
			TransactionID: c.TransactionID,
		})
	}
	return batch, errs
}

func checkCandidate(c Candidate) (RowError, bool) {
	switch {
	case c.Date.IsZero():
		return RowError{Row: c.Row, Field: fieldDate, Value: c.RawDate, Reason: "not a valid date"}, false
	case !c.Amount.Valid:
		return RowError{Row: c.Row, Field: fieldAmount, Value: c.RawAmount, Reason: "not a valid amount"}, false
	case c.Particulars == "":
		return RowError{Row: c.Row, Field: fieldParticulars, Reason: "description is empty"}, false
	}
	return RowError{}, true
}
