package pipeline

import (
	"errors"
	"fmt"

	"github.com/pennywyse/pennywyse/internal/dedupe"
	"github.com/pennywyse/pennywyse/internal/importer"
	"github.com/pennywyse/pennywyse/internal/model"
	"github.com/pennywyse/pennywyse/internal/normalize"
)

// Outcome classifies an ingestion run.
type Outcome string

const (
	OutcomeIngested        Outcome = "ingested"
	OutcomeNothingToIngest Outcome = "nothing_to_ingest"
	OutcomeNoNewRows       Outcome = "no_new_rows"
)

// Report summarizes one ingestion run for the caller.
type Report struct {
	RunID        string                `json:"run_id"`
	Source       string                `json:"source"`
	DryRun       bool                  `json:"dry_run"`
	Received     int                   `json:"received"`
	Invalid      int                   `json:"invalid"`
	Duplicates   int                   `json:"duplicates"`
	Admitted     int                   `json:"admitted"`
	Outcome      Outcome               `json:"outcome"`
	Reason       string                `json:"reason,omitempty"`
	DupReasons   map[dedupe.Reason]int `json:"duplicate_reasons,omitempty"`
	CommitHash   string                `json:"commit_hash,omitempty"`
	Transactions []model.Transaction   `json:"transactions,omitempty"`

	IgnoredColumns []string `json:"ignored_columns,omitempty"`
}

func newReport(runID, source string, b Batch) Report {
	r := Report{
		RunID:        runID,
		Source:       source,
		Received:     b.Received,
		Invalid:      len(b.RowErrors),
		Duplicates:   len(b.Rejected),
		Admitted:     len(b.Admitted),
		Transactions: b.Admitted,

		IgnoredColumns: b.IgnoredColumns,
	}
	if len(b.Rejected) > 0 {
		r.DupReasons = dedupe.Result{Rejected: b.Rejected}.Counts()
	}

	switch {
	case r.Admitted > 0:
		r.Outcome = OutcomeIngested
	case r.Received == 0:
		r.Outcome = OutcomeNothingToIngest
		r.Reason = "the document has a header but no rows"
	case r.Received == r.Invalid:
		r.Outcome = OutcomeNothingToIngest
		r.Reason = fmt.Sprintf("none of the %d rows had a valid date, amount and description", r.Received)
	default:
		r.Outcome = OutcomeNoNewRows
		r.Reason = "every valid row is already in the ledger"
	}
	return r
}

func failedReport(runID, source string, err error) Report {
	return Report{
		RunID:   runID,
		Source:  source,
		Outcome: OutcomeNothingToIngest,
		Reason:  reasonFor(err),
	}
}

// reasonFor turns an input error into a message for the user.
func reasonFor(err error) string {
	var missing *importer.MissingColumnError
	switch {
	case errors.As(err, &missing):
		return fmt.Sprintf("the table has no %s column", missing.Column)
	case errors.Is(err, importer.ErrEmptyInput):
		return "the document is empty"
	case errors.Is(err, normalize.ErrMalformedFence):
		return "the document opens a code block that never closes"
	case errors.Is(err, importer.ErrMalformed):
		return "the document is not a readable table"
	default:
		return "the document could not be read"
	}
}

// isInputError reports whether err describes bad input rather than a failure
// of the pipeline itself.
func isInputError(err error) bool {
	return errors.Is(err, importer.ErrEmptyInput) ||
		errors.Is(err, importer.ErrMissingColumn) ||
		errors.Is(err, importer.ErrMalformed) ||
		errors.Is(err, normalize.ErrMalformedFence)
}
