package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDateLayout is the day-month-year layout expected from the extractor.
const DefaultDateLayout = "02/01/2006"

var (
	// ErrEmptyInput is returned when there is no text to parse.
	ErrEmptyInput = errors.New("empty input")
	// ErrMissingColumn is wrapped by MissingColumnError.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformed is wrapped by MalformedError.
	ErrMalformed = errors.New("malformed CSV")
)

// MissingColumnError names the required column absent from the header.
type MissingColumnError struct {
	Column string
	Header []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q (header: %s)", e.Column, strings.Join(e.Header, ","))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// MalformedError wraps a CSV reader failure.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed CSV: %v", e.Err)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

func (e *MalformedError) Unwrap() error { return e.Err }

// Options controls field parsing.
type Options struct {
	DateLayout string // default DefaultDateLayout
}

func (o Options) dateLayout() string {
	if o.DateLayout == "" {
		return DefaultDateLayout
	}
	return o.DateLayout
}

// Candidate is one parsed row before validation. Date is zero and Amount is
// invalid when the source value did not parse.
type Candidate struct {
	Row           int // 1-based record number, header = 1
	Date          time.Time
	RawDate       string
	Particulars   string
	Category      string
	Amount        decimal.NullDecimal
	RawAmount     string
	TransactionID string
	Extra         map[string]string
}

// Table is the parsed candidate batch.
type Table struct {
	Header     []string
	Candidates []Candidate
}

// Len returns the number of candidate rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Candidates)
}

// ExtraColumns returns the names of unrecognized columns that carry a value
// in at least one row, sorted. Their contents are not ingested.
func (t *Table) ExtraColumns() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var cols []string
	for _, c := range t.Candidates {
		for name := range c.Extra {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// Parse reads normalized CSV text with a header row into a Table.
// It never returns a partial table: on error the table is nil.
func Parse(text string, opts Options) (*Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &MalformedError{Err: fmt.Errorf("reading header: %w", err)}
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	table := &Table{Header: header}
	layout := opts.dateLayout()
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedError{Err: fmt.Errorf("row %d: %w", row, err)}
		}
		if blankRecord(rec) {
			continue
		}
		table.Candidates = append(table.Candidates, cols.candidate(row, rec, layout))
	}
	return table, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
