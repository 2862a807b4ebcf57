package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennywyse/pennywyse/internal/model"
)

// Header is the CSV header for transactions.csv. Columns are only ever added
// at the end.
const Header = "Date,Particulars,Category,Amount,txn_id"

const (
	numFields   = 5
	colDate     = 0
	colPart     = 1
	colCategory = 2
	colAmount   = 3
	colTxnID    = 4
)

// legacyTxnIDColumn is accepted in place of txn_id.
const legacyTxnIDColumn = "Transaction_ID"

// ReadTransactions reads all rows from a transactions.csv reader. Columns are
// located by header name, so ledgers with extra trailing columns still load.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger header: %w", err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger CSV: %w", err)
		}
		txn, err := UnmarshalTransaction(idx.project(rec))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes txns to a writer (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendTransactions appends txns to an existing transactions.csv writer (no header).
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// appendInLayout rewrites a ledger whose header is not in Header order with
// added appended in the file's column order. A file without an id column
// gains txn_id at the end; unknown columns are kept and left empty on new rows.
func appendInLayout(data []byte, header []string, added []model.Transaction) ([]byte, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}
	if idx[colTxnID] < 0 {
		idx[colTxnID] = len(header)
		records[0] = append(records[0], strings.Split(Header, ",")[colTxnID])
		for i := 1; i < len(records); i++ {
			records[i] = append(records[i], "")
		}
	}
	width := len(records[0])

	for _, txn := range added {
		canonical := MarshalTransaction(txn)
		row := make([]string, width)
		for i, pos := range idx {
			row[pos] = canonical[i]
		}
		records = append(records, row)
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return nil, fmt.Errorf("writing ledger CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = txn.Date.Format(model.DateFormat)
	row[colPart] = txn.Particulars
	row[colCategory] = txn.Category
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colTxnID] = txn.TransactionID
	return row
}

// UnmarshalTransaction converts a CSV row in Header order to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Transaction{
		Date:          date,
		Particulars:   record[colPart],
		Category:      record[colCategory],
		Amount:        amount,
		TransactionID: record[colTxnID],
	}, nil
}

// columnIndex maps Header positions to positions in a file's header.
type columnIndex [numFields]int

func headerIndex(header []string) (columnIndex, error) {
	var idx columnIndex
	want := strings.Split(Header, ",")
	for i := range idx {
		idx[i] = -1
	}
	for pos, h := range header {
		name := strings.TrimSpace(h)
		if name == legacyTxnIDColumn {
			name = want[colTxnID]
		}
		for i, w := range want {
			if strings.EqualFold(name, w) && idx[i] < 0 {
				idx[i] = pos
			}
		}
	}
	for i, w := range want {
		if idx[i] < 0 && i != colTxnID {
			return idx, fmt.Errorf("ledger header missing column %q", w)
		}
	}
	return idx, nil
}

// project reorders a file record into Header order. Absent optional columns
// become "".
func (idx columnIndex) project(rec []string) []string {
	out := make([]string, numFields)
	for i, pos := range idx {
		if pos >= 0 && pos < len(rec) {
			out[i] = rec[pos]
		}
	}
	return out
}
