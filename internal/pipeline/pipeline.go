package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pennywyse/pennywyse/internal/gitops"
	"github.com/pennywyse/pennywyse/internal/ingestlog"
	"github.com/pennywyse/pennywyse/internal/ledger"
	"github.com/pennywyse/pennywyse/internal/logger"
	"github.com/pennywyse/pennywyse/internal/model"
)

// Config wires a Pipeline.
type Config struct {
	Store     *ledger.Store
	Processor Processor

	// Root is the project root holding logs/ and .git. Empty disables the
	// ingest log and git commits.
	Root       string
	AutoCommit bool
	Author     gitops.Author
}

// Pipeline ingests documents into one ledger.
type Pipeline struct {
	store      *ledger.Store
	proc       Processor
	root       string
	autoCommit bool
	author     gitops.Author
	now        func() time.Time
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		store:      cfg.Store,
		proc:       cfg.Processor,
		root:       cfg.Root,
		autoCommit: cfg.AutoCommit,
		author:     cfg.Author,
		now:        time.Now,
	}
}

// Ingest processes raw against the current ledger and appends the admitted
// rows, all inside the ledger's critical section. Bad input is reported with
// OutcomeNothingToIngest and a nil error; a non-nil error means nothing was
// persisted.
func (p *Pipeline) Ingest(ctx context.Context, source, raw string) (Report, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Str("source", source).Logger()

	var batch Batch
	var inputErr error
	added, err := p.store.Update(ctx, func(existing []model.Transaction) ([]model.Transaction, error) {
		b, err := p.proc.Process(raw, existing)
		if err != nil {
			if isInputError(err) {
				inputErr = err
				return nil, nil
			}
			return nil, err
		}
		batch = b
		return b.Admitted, nil
	})
	if err != nil {
		log.Error().Err(err).Msg("ingest failed")
		return Report{}, fmt.Errorf("ingesting %s: %w", source, err)
	}

	if inputErr != nil {
		log.Warn().Err(inputErr).Msg("nothing to ingest")
		return failedReport(runID, source, inputErr), nil
	}

	logRowErrors(log, batch)
	report := newReport(runID, source, batch)
	if len(added) > 0 {
		report.CommitHash = p.afterCommit(log, report)
	}

	log.Info().
		Int("received", report.Received).
		Int("invalid", report.Invalid).
		Int("duplicates", report.Duplicates).
		Int("admitted", report.Admitted).
		Str("outcome", string(report.Outcome)).
		Msg("ingest finished")
	return report, nil
}

// Preview processes raw against a snapshot of the ledger without writing.
func (p *Pipeline) Preview(ctx context.Context, source, raw string) (Report, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Str("source", source).Logger()

	existing, err := p.store.Read()
	if err != nil {
		return Report{}, fmt.Errorf("previewing %s: %w", source, err)
	}

	batch, err := p.proc.Process(raw, existing)
	if err != nil {
		if !isInputError(err) {
			return Report{}, fmt.Errorf("previewing %s: %w", source, err)
		}
		log.Warn().Err(err).Msg("nothing to ingest")
		r := failedReport(runID, source, err)
		r.DryRun = true
		return r, nil
	}

	logRowErrors(log, batch)
	r := newReport(runID, source, batch)
	r.DryRun = true
	return r, nil
}

// afterCommit records the run in the ingest log and commits ledger and log
// when configured. Failures here are logged: the ledger write already
// succeeded.
func (p *Pipeline) afterCommit(log zerolog.Logger, r Report) string {
	if p.root == "" {
		return ""
	}

	var hash string
	if p.autoCommit && gitops.IsRepo(p.root) {
		// The log is committed as of the previous run; this run's row
		// carries the new hash and lands in the next commit.
		paths := []string{p.relative(p.store.Path())}
		if _, err := os.Stat(ingestlog.Path(p.root)); err == nil {
			paths = append(paths, ingestlog.RelPath)
		}
		var err error
		hash, err = gitops.CommitPaths(p.root, gitops.IngestMessage(r.Source, r.Admitted, r.RunID), p.author, paths...)
		if err != nil {
			log.Warn().Err(err).Msg("git commit failed")
		}
	}

	entry := ingestlog.Entry{
		RunID:      r.RunID,
		Timestamp:  p.now(),
		Source:     r.Source,
		Received:   r.Received,
		Invalid:    r.Invalid,
		Duplicates: r.Duplicates,
		Admitted:   r.Admitted,
		Outcome:    string(r.Outcome),
		CommitHash: hash,
	}
	if err := ingestlog.Append(p.root, entry); err != nil {
		log.Warn().Err(err).Msg("writing ingest log failed")
	}
	return hash
}

func (p *Pipeline) relative(path string) string {
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return path
	}
	return rel
}

func logRowErrors(log zerolog.Logger, b Batch) {
	for _, re := range b.RowErrors {
		log.Debug().Int("row", re.Row).Str("field", re.Field).Str("value", re.Value).Msg(re.Reason)
	}
	for _, rej := range b.Rejected {
		log.Debug().
			Str("date", rej.Transaction.Day()).
			Str("amount", rej.Transaction.Amount.String()).
			Str("reason", string(rej.Reason)).
			Msg("duplicate")
	}
}
