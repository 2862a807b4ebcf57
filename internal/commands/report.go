package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/pennywyse/pennywyse/internal/extract"
	"github.com/pennywyse/pennywyse/internal/ledger"
	"github.com/pennywyse/pennywyse/internal/model"
	"github.com/pennywyse/pennywyse/internal/pipeline"
)

// failureReason turns an ingest error into a line for the user. The error
// itself goes to the log.
func failureReason(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnavailable):
		return "extraction service unavailable, check the API key or try again later"
	case errors.Is(err, extract.ErrUnsupported):
		return "unsupported file type (want .csv, .txt, .pdf, .png, .jpg or .webp)"
	case errors.Is(err, fs.ErrNotExist):
		return "file not found"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case errors.Is(err, ledger.ErrLocked):
		return "the ledger is busy with another ingest, try again shortly"
	case errors.Is(err, ledger.ErrInvalid):
		return "the rows failed ledger validation, nothing was saved"
	default:
		return "ingestion failed, nothing was saved"
	}
}

func reportFailure(w io.Writer, log zerolog.Logger, name string, err error) {
	log.Error().Err(err).Str("file", name).Msg("ingest failed")
	fmt.Fprintf(w, "%s: %s\n", name, failureReason(err))
}

func printReport(w io.Writer, r pipeline.Report) {
	verb := "added"
	if r.DryRun {
		verb = "would add"
	}

	switch r.Outcome {
	case pipeline.OutcomeNothingToIngest:
		fmt.Fprintf(w, "%s: nothing to ingest: %s\n", r.Source, r.Reason)
		return
	case pipeline.OutcomeNoNewRows:
		fmt.Fprintf(w, "%s: no new transactions (%d duplicates, %d invalid rows)\n", r.Source, r.Duplicates, r.Invalid)
		return
	}

	fmt.Fprintf(w, "%s: %s %d of %d rows (%d duplicates, %d invalid)", r.Source, verb, r.Admitted, r.Received, r.Duplicates, r.Invalid)
	if r.CommitHash != "" {
		fmt.Fprintf(w, " [%s]", r.CommitHash)
	}
	fmt.Fprintln(w)
	if len(r.IgnoredColumns) > 0 {
		fmt.Fprintf(w, "  ignored columns: %s\n", strings.Join(r.IgnoredColumns, ", "))
	}
	printTransactions(w, r.Transactions)
}

func printTransactions(w io.Writer, txns []model.Transaction) {
	if len(txns) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, t := range txns {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t\n", t.Day(), t.Amount.StringFixed(2), t.Category, t.Particulars)
	}
	tw.Flush()
}
