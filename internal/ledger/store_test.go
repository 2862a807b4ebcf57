package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywyse/pennywyse/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "ledger", "transactions.csv"))
}

func appendAll(rows []model.Transaction) UpdateFunc {
	return func([]model.Transaction) ([]model.Transaction, error) {
		return rows, nil
	}
}

func TestStoreReadMissing(t *testing.T) {
	s := newTestStore(t)
	txns, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestStoreInit(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))

	// Idempotent.
	require.NoError(t, s.Init())
}

func TestStoreUpdateAppends(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleTransactions()
	added, err := s.Update(ctx, appendAll(first))
	require.NoError(t, err)
	assert.Len(t, added, 2)

	more := []model.Transaction{
		{Date: day(2025, 1, 7), Particulars: "UBER", Category: "Transport", Amount: decimal.NewFromInt(-300)},
	}
	var seen int
	_, err = s.Update(ctx, func(existing []model.Transaction) ([]model.Transaction, error) {
		seen = len(existing)
		return more, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)

	got, err := s.Read()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "UBER", got[2].Particulars)

	fl := flock.New(s.Path() + ".lock")
	ok, err := fl.TryLock()
	require.NoError(t, err)
	assert.True(t, ok, "lock released")
	require.NoError(t, fl.Unlock())
}

func TestStoreUpdateFuncError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Update(ctx, appendAll(sampleTransactions()))
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Update(ctx, func([]model.Transaction) ([]model.Transaction, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStoreUpdateInvalidWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.Update(ctx, appendAll(sampleTransactions()))
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	bad := []model.Transaction{
		{Date: day(2025, 2, 1), Particulars: "ok", Amount: decimal.NewFromInt(-5)},
		{Date: day(2025, 2, 1), Particulars: "dup", Amount: decimal.NewFromInt(-6), TransactionID: "123456789012"},
	}
	_, err = s.Update(ctx, appendAll(bad))
	assert.ErrorIs(t, err, ErrInvalid)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStoreUpdateNothingToAdd(t *testing.T) {
	s := newTestStore(t)
	added, err := s.Update(context.Background(), appendAll(nil))
	require.NoError(t, err)
	assert.Empty(t, added)

	_, err = os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist), "no file for an empty batch")
}

// holdLock takes the ledger lock through a separate file handle, as another
// process would.
func holdLock(t *testing.T, s *Store) {
	t.Helper()
	fl := flock.New(s.Path() + ".lock")
	ok, err := fl.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { fl.Unlock() })
}

func TestStoreUpdateLocked(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init())
	holdLock(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	_, err := s.Update(ctx, appendAll(sampleTransactions()))
	assert.ErrorIs(t, err, ErrLocked)

	got, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreUpdateLockTimeout(t *testing.T) {
	s := newTestStore(t)
	s.LockTimeout = 150 * time.Millisecond
	require.NoError(t, s.Init())
	holdLock(t, s)

	done := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), appendAll(sampleTransactions()))
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrLocked)
	case <-time.After(5 * time.Second):
		t.Fatal("Update did not give up on a held lock")
	}
}

func TestStoreUpdateStaleLockFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init())
	// Left behind by a writer that died mid-update.
	require.NoError(t, os.WriteFile(s.Path()+".lock", []byte("99999\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	added, err := s.Update(ctx, appendAll(sampleTransactions()))
	require.NoError(t, err)
	assert.Len(t, added, 2)
}

func TestStoreUpdateReorderedLedger(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(
		"Particulars,Date,Amount,Category,txn_id,Note\n"+
			"SWIGGY,2025-01-03,-450.00,Food,123456789012,lunch\n"), 0o644))

	tea := model.Transaction{Date: day(2025, 1, 4), Particulars: "TEA", Category: "Food", Amount: decimal.NewFromInt(-5)}
	_, err := s.Update(context.Background(), appendAll([]model.Transaction{tea}))
	require.NoError(t, err)

	got, err := s.Read()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "SWIGGY", got[0].Particulars)
	assert.Equal(t, "TEA", got[1].Particulars)
	assert.Equal(t, "2025-01-04", got[1].Day())
	assert.True(t, got[1].Amount.Equal(decimal.NewFromInt(-5)))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "SWIGGY,2025-01-03,-450.00,Food,123456789012,lunch\n")
	assert.Contains(t, string(data), "TEA,2025-01-04,-5.00,Food,,\n")
}

func TestStoreUpdateLedgerWithoutIDColumn(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(
		"Date,Particulars,Category,Amount\n2025-01-03,SWIGGY,Food,-450.00\n"), 0o644))

	uber := model.Transaction{Date: day(2025, 1, 7), Particulars: "UBER", Category: "Transport",
		Amount: decimal.NewFromInt(-300), TransactionID: "123456789012"}
	_, err := s.Update(context.Background(), appendAll([]model.Transaction{uber}))
	require.NoError(t, err)

	got, err := s.Read()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].TransactionID)
	assert.Equal(t, "123456789012", got[1].TransactionID)
}

func TestStoreUpdateConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			_, errs[w] = s.Update(ctx, func(existing []model.Transaction) ([]model.Transaction, error) {
				return []model.Transaction{{
					Date:          day(2025, 3, 1),
					Particulars:   fmt.Sprintf("writer %d", w),
					Amount:        decimal.NewFromInt(int64(-w - 1)),
					TransactionID: fmt.Sprintf("%012d", w),
				}}, nil
			})
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	got, err := s.Read()
	require.NoError(t, err)
	assert.Len(t, got, writers)
}
