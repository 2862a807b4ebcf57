// Package ingestlog keeps logs/ingest-log.csv, one row per ingestion run
// that touched the ledger.
package ingestlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry records the counts of one ingestion run.
type Entry struct {
	RunID      string
	Timestamp  time.Time
	Source     string
	Received   int
	Invalid    int
	Duplicates int
	Admitted   int
	Outcome    string
	CommitHash string
}

// Header is the CSV header for ingest-log.csv.
const Header = "run_id,timestamp,source,received,invalid,duplicates,admitted,outcome,commit_hash"

// RelPath is the log location relative to a project root.
const RelPath = "logs/ingest-log.csv"

const (
	numFields     = 9
	colRunID      = 0
	colTimestamp  = 1
	colSource     = 2
	colReceived   = 3
	colInvalid    = 4
	colDuplicates = 5
	colAdmitted   = 6
	colOutcome    = 7
	colCommitHash = 8
)

// Path returns the ingest log path under root.
func Path(root string) string {
	return filepath.Join(root, RelPath)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colSource] = e.Source
	row[colReceived] = strconv.Itoa(e.Received)
	row[colInvalid] = strconv.Itoa(e.Invalid)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	row[colAdmitted] = strconv.Itoa(e.Admitted)
	row[colOutcome] = e.Outcome
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var counts [4]int
	for i, col := range []int{colReceived, colInvalid, colDuplicates, colAdmitted} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		RunID:      record[colRunID],
		Timestamp:  ts,
		Source:     record[colSource],
		Received:   counts[0],
		Invalid:    counts[1],
		Duplicates: counts[2],
		Admitted:   counts[3],
		Outcome:    record[colOutcome],
		CommitHash: record[colCommitHash],
	}, nil
}

// Append writes entries to the ingest log under root, creating the file and
// header if needed.
func Append(root string, entries ...Entry) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ingest log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing ingest log: %w", err)
	}
	return f.Sync()
}

// Read returns all entries from the ingest log under root. A missing file
// yields nil.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(Path(root))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ingest log: %w", err)
	}
	defer f.Close()

	return ReadEntries(f)
}

// ReadEntries parses an ingest log from r.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ingest log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
