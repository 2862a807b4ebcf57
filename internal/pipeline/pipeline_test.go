package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywyse/pennywyse/internal/categories"
	"github.com/pennywyse/pennywyse/internal/categorize"
	"github.com/pennywyse/pennywyse/internal/dedupe"
	"github.com/pennywyse/pennywyse/internal/ingestlog"
	"github.com/pennywyse/pennywyse/internal/ledger"
	"github.com/pennywyse/pennywyse/internal/model"
)

func statement(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "ai_statement.txt"))
	require.NoError(t, err)
	return string(data)
}

func testProcessor() Processor {
	return Processor{
		Categorizer: categorize.New(categories.NewService(categories.DefaultSet()).Rules()),
		Strictness:  dedupe.Strict,
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *ledger.Store, string) {
	t.Helper()
	root := t.TempDir()
	store := ledger.NewStore(filepath.Join(root, ledger.DefaultPath))
	p := New(Config{Store: store, Processor: testProcessor(), Root: root})
	return p, store, root
}

func TestProcessStatement(t *testing.T) {
	b, err := testProcessor().Process(statement(t), nil)
	require.NoError(t, err)

	assert.Equal(t, 6, b.Received)
	assert.Len(t, b.RowErrors, 2)
	assert.Empty(t, b.Rejected)
	require.Len(t, b.Admitted, 4)

	// Newest first.
	want := []struct {
		day, category, id string
	}{
		{"2025-01-10", "Transport", "123456789012"},
		{"2025-01-07", "EMI", "EMI-2025-01"},
		{"2025-01-05", "Income", "AXISN0123456789ABCD"},
		{"2025-01-03", "Food", "561090480502"},
	}
	for i, w := range want {
		assert.Equal(t, w.day, b.Admitted[i].Day(), "row %d", i)
		assert.Equal(t, w.category, b.Admitted[i].Category, "row %d", i)
		assert.Equal(t, w.id, b.Admitted[i].TransactionID, "row %d", i)
	}
	assert.True(t, b.Admitted[2].Amount.Equal(decimal.RequireFromString("168256")))
	assert.Len(t, b.Ledger, 4)
}

func TestProcessDoesNotModifyLedger(t *testing.T) {
	first, err := testProcessor().Process(statement(t), nil)
	require.NoError(t, err)
	existing := append([]model.Transaction(nil), first.Ledger...)

	second, err := testProcessor().Process(statement(t), existing)
	require.NoError(t, err)
	assert.Empty(t, second.Admitted)
	assert.Len(t, second.Rejected, 4)
	assert.Equal(t, first.Ledger, existing)
	assert.Len(t, second.Ledger, 4)
}

func TestProcessZeroValue(t *testing.T) {
	b, err := Processor{}.Process("Date,Particulars,Amount\n03/01/2025,SWIGGY,-450\n", nil)
	require.NoError(t, err)
	require.Len(t, b.Admitted, 1)
	assert.Equal(t, categorize.Fallback, b.Admitted[0].Category)
}

func TestIngestIdempotent(t *testing.T) {
	p, store, _ := newTestPipeline(t)
	ctx := context.Background()

	first, err := p.Ingest(ctx, "jan.txt", statement(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIngested, first.Outcome)
	assert.Equal(t, 4, first.Admitted)
	assert.Equal(t, 2, first.Invalid)
	assert.NotEmpty(t, first.RunID)

	second, err := p.Ingest(ctx, "jan.txt", statement(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoNewRows, second.Outcome)
	assert.Zero(t, second.Admitted)
	assert.Equal(t, 4, second.Duplicates)
	assert.Equal(t, 4, second.DupReasons[dedupe.ReasonTransactionID])
	assert.NotEqual(t, first.RunID, second.RunID)

	txns, err := store.Read()
	require.NoError(t, err)
	assert.Len(t, txns, 4)
}

func TestIngestMissingAmountColumn(t *testing.T) {
	p, store, _ := newTestPipeline(t)

	r, err := p.Ingest(context.Background(), "bad.csv", "Date,Particulars\n03/01/2025,SWIGGY\n")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingToIngest, r.Outcome)
	assert.Contains(t, r.Reason, "Amount")
	assert.Zero(t, r.Admitted)

	txns, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestIngestInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{"empty", "  \n\n", "empty"},
		{"unclosed fence", "```csv\nDate,Particulars,Amount\n03/01/2025,X,-1\n", "never closes"},
		{"header only", "Date,Particulars,Amount\n", "no rows"},
		{"all rows invalid", "Date,Particulars,Amount\n31/02/2025,X,-1\n", "valid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := newTestPipeline(t)
			r, err := p.Ingest(context.Background(), "x", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, OutcomeNothingToIngest, r.Outcome)
			assert.Contains(t, r.Reason, tt.reason)
		})
	}
}

func TestIngestBoundaryRow(t *testing.T) {
	p, store, _ := newTestPipeline(t)
	raw := "Date,Particulars,Amount\n" +
		"99/99/2025,BAD DATE,-10\n" +
		"04/01/2025,ZOMATO DINNER,-620\n"

	r, err := p.Ingest(context.Background(), "x", raw)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Admitted)
	assert.Equal(t, 1, r.Invalid)
	require.Len(t, r.Transactions, 1)
	assert.Equal(t, "ZOMATO DINNER", r.Transactions[0].Particulars)
	assert.Equal(t, "Food", r.Transactions[0].Category)

	txns, err := store.Read()
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestIngestReportsIgnoredColumns(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	raw := "Date,Particulars,Amount,Balance\n04/01/2025,ZOMATO DINNER,-620,9380.00\n"

	r, err := p.Ingest(context.Background(), "x", raw)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Admitted)
	assert.Equal(t, []string{"Balance"}, r.IgnoredColumns)
}

func TestIngestRepeatedRowWithoutIDPassesCheck(t *testing.T) {
	p, store, _ := newTestPipeline(t)
	raw := "Date,Particulars,Amount\n" +
		"03/01/2025,CASH COFFEE,-450\n" +
		"03/01/2025,CASH COFFEE,-450\n"

	r, err := p.Ingest(context.Background(), "x", raw)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Admitted)
	assert.Equal(t, 1, r.Duplicates)

	txns, err := store.Read()
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Empty(t, ledger.Check(txns))
}

func TestIngestLenientStrictness(t *testing.T) {
	root := t.TempDir()
	store := ledger.NewStore(filepath.Join(root, ledger.DefaultPath))
	proc := testProcessor()
	proc.Strictness = dedupe.Lenient
	p := New(Config{Store: store, Processor: proc})
	ctx := context.Background()

	_, err := p.Ingest(ctx, "a", "Date,Particulars,Amount\n03/01/2025,CAFE COFFEE 111111111111,-450\n")
	require.NoError(t, err)
	r, err := p.Ingest(ctx, "b", "Date,Particulars,Amount\n03/01/2025,CAFE COFFEE 222222222222,-450\n")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Admitted)

	txns, err := store.Read()
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestIngestConcurrentSameBatch(t *testing.T) {
	p, store, _ := newTestPipeline(t)
	raw := statement(t)

	const workers = 6
	var wg sync.WaitGroup
	admitted := make([]int, workers)
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			r, err := p.Ingest(context.Background(), "jan.txt", raw)
			admitted[w], errs[w] = r.Admitted, err
		}(w)
	}
	wg.Wait()

	total := 0
	for w := range admitted {
		require.NoError(t, errs[w])
		total += admitted[w]
	}
	assert.Equal(t, 4, total)

	txns, err := store.Read()
	require.NoError(t, err)
	assert.Len(t, txns, 4)
}

func TestIngestWritesIngestLog(t *testing.T) {
	p, _, root := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.Ingest(ctx, "jan.txt", statement(t))
	require.NoError(t, err)
	_, err = p.Ingest(ctx, "jan.txt", statement(t))
	require.NoError(t, err)

	entries, err := ingestlog.Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only runs that admitted rows are logged")
	assert.Equal(t, "jan.txt", entries[0].Source)
	assert.Equal(t, 4, entries[0].Admitted)
	assert.Equal(t, string(OutcomeIngested), entries[0].Outcome)
}

func TestPreviewDoesNotWrite(t *testing.T) {
	p, store, _ := newTestPipeline(t)

	r, err := p.Preview(context.Background(), "jan.txt", statement(t))
	require.NoError(t, err)
	assert.True(t, r.DryRun)
	assert.Equal(t, 4, r.Admitted)
	assert.Equal(t, OutcomeIngested, r.Outcome)

	txns, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestPreviewInputError(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	r, err := p.Preview(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNothingToIngest, r.Outcome)
	assert.True(t, r.DryRun)
}
