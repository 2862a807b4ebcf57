package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/pennywyse/pennywyse/internal/model"
)

// DefaultPath is the ledger location relative to a project root.
const DefaultPath = "ledger/transactions.csv"

var (
	// ErrLocked is returned when another writer holds the ledger lock past the
	// caller's deadline.
	ErrLocked = errors.New("ledger is locked by another writer")
	// ErrInvalid is wrapped by the error returned when rows fail validation.
	ErrInvalid = errors.New("invalid ledger rows")
)

const (
	// lockPoll is how often Update retries a held lock.
	lockPoll = 50 * time.Millisecond
	// DefaultLockTimeout bounds the wait for another writer's lock.
	DefaultLockTimeout = 30 * time.Second
)

// UpdateFunc receives the full current ledger and returns the rows to append.
// Returning an error discards the batch.
type UpdateFunc func(existing []model.Transaction) ([]model.Transaction, error)

// Store is the append-only transactions.csv file. One Store per path per
// process; an flock on <path>.lock serializes writers across processes and is
// released by the kernel if the holder dies.
type Store struct {
	// LockTimeout caps how long Update waits for the lock, on top of the
	// caller's context. Zero waits as long as the context allows.
	LockTimeout time.Duration

	path string
	mu   sync.Mutex
}

// NewStore returns a Store for the ledger at path.
func NewStore(path string) *Store {
	return &Store{path: path, LockTimeout: DefaultLockTimeout}
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Read returns every ledger row. A missing file is an empty ledger.
func (s *Store) Read() ([]model.Transaction, error) {
	txns, _, err := s.read()
	return txns, err
}

func (s *Store) read() ([]model.Transaction, []byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger %s: %w", s.path, err)
	}

	txns, err := ReadTransactions(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("reading ledger %s: %w", s.path, err)
	}
	return txns, data, nil
}

// Update runs one read-dedupe-append cycle as a critical section. It holds
// the in-process mutex and the lock file for the whole cycle, reads the full
// ledger, calls fn, validates the returned rows and appends them atomically.
// Either every returned row is persisted or none is. Returns the rows written.
func (s *Store) Update(ctx context.Context, fn UpdateFunc) ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, data, err := s.read()
	if err != nil {
		return nil, err
	}

	added, err := fn(existing)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return nil, nil
	}

	if verrs := ValidateTransactions(existing, added); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := appendRows(data, added)
	if err != nil {
		return nil, fmt.Errorf("appending transactions: %w", err)
	}
	if err := writeAtomic(s.path, out); err != nil {
		return nil, err
	}
	return added, nil
}

// lock takes the cross-process lock, polling until ctx is done or
// LockTimeout passes. A lock file left by a dead process holds no lock.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	if s.LockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.LockTimeout)
		defer cancel()
	}

	lockPath := s.path + ".lock"
	fl := flock.New(lockPath)
	ok, err := fl.TryLockContext(ctx, lockPoll)
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("taking ledger lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	return func() { fl.Unlock() }, nil
}

// appendRows returns data with added appended. Rows follow the file's own
// header, so ledgers with reordered or extra columns stay aligned. An empty
// file gets the canonical header first.
func appendRows(data []byte, added []model.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	if len(data) == 0 {
		if err := WriteTransactions(&buf, added); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}
	if strings.Join(header, ",") == Header {
		buf.Write(data)
		if data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
		if err := AppendTransactions(&buf, added); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return appendInLayout(data, header, added)
}

// writeAtomic replaces path with data via a synced temp file and rename.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting ledger permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// Init writes an empty ledger (header only) if none exists.
func (s *Store) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteTransactions(&buf, nil); err != nil {
		return err
	}
	return writeAtomic(s.path, buf.Bytes())
}
