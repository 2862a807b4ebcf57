// Package pipeline runs raw statement text through normalization, parsing,
// validation, identity, deduplication and categorization, and commits the
// admitted rows to the ledger.
package pipeline

import (
	"github.com/pennywyse/pennywyse/internal/categorize"
	"github.com/pennywyse/pennywyse/internal/dedupe"
	"github.com/pennywyse/pennywyse/internal/id"
	"github.com/pennywyse/pennywyse/internal/importer"
	"github.com/pennywyse/pennywyse/internal/model"
	"github.com/pennywyse/pennywyse/internal/normalize"
)

// Processor holds the settings of one processing step. The zero value uses
// the default date layout, strict dedupe and an empty ruleset.
type Processor struct {
	Categorizer *categorize.Categorizer
	DateLayout  string
	Strictness  dedupe.Strictness
}

// Batch is the result of processing one raw document against a ledger.
type Batch struct {
	Received  int // parsed candidate rows
	Admitted  []model.Transaction
	Rejected  []dedupe.Rejection
	RowErrors []importer.RowError
	Ledger    []model.Transaction // input ledger followed by Admitted
	// IgnoredColumns are source columns with data that the ledger does not keep.
	IgnoredColumns []string
}

// Process turns raw text into admitted transactions relative to ledger. It
// has no side effects; ledger is not modified. The returned error is one of
// the normalize or importer input errors.
func (p Processor) Process(raw string, ledger []model.Transaction) (Batch, error) {
	text, err := normalize.Text(raw)
	if err != nil {
		return Batch{}, err
	}

	table, err := importer.Parse(text, importer.Options{DateLayout: p.DateLayout})
	if err != nil {
		return Batch{}, err
	}

	valid, rowErrs := table.Validate()
	id.Assign(valid.Transactions)

	res := dedupe.Filter(valid.Transactions, ledger, dedupe.Options{Strictness: p.Strictness})

	cat := p.Categorizer
	if cat == nil {
		cat = categorize.New(nil)
	}
	cat.Apply(res.Admitted)

	updated := make([]model.Transaction, 0, len(ledger)+len(res.Admitted))
	updated = append(updated, ledger...)
	updated = append(updated, res.Admitted...)

	return Batch{
		Received:  table.Len(),
		Admitted:  res.Admitted,
		Rejected:  res.Rejected,
		RowErrors: rowErrs,
		Ledger:    updated,

		IgnoredColumns: table.ExtraColumns(),
	}, nil
}
