// Package export renders the ledger for spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pennywyse/pennywyse/internal/ledger"
	"github.com/pennywyse/pennywyse/internal/model"
	"github.com/pennywyse/pennywyse/internal/summary"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

// ParseFormat validates a format name. "" means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write renders txns to w in format f.
func Write(w io.Writer, f Format, txns []model.Transaction) error {
	switch f {
	case CSV:
		return WriteCSV(w, txns)
	case XLSX:
		return WriteXLSX(w, txns)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// WriteCSV writes txns in ledger format.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	if err := ledger.WriteTransactions(w, txns); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Transactions sheet and a Summary sheet
// of expense totals per category.
func WriteXLSX(w io.Writer, txns []model.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("adding summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeTransactions(f, headerStyle, txns); err != nil {
		return err
	}
	if err := writeSummary(f, headerStyle, summary.Compute(txns)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx export: %w", err)
	}
	return nil
}

func writeTransactions(f *excelize.File, headerStyle int, txns []model.Transaction) error {
	headers := strings.Split(ledger.Header, ",")
	if err := writeHeader(f, transactionsSheet, headerStyle, headers); err != nil {
		return err
	}
	widths := map[string]float64{"A": 12, "B": 48, "C": 16, "D": 14, "E": 24}
	for col, width := range widths {
		if err := f.SetColWidth(transactionsSheet, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	for i, t := range txns {
		row := i + 2
		values := []any{t.Day(), t.Particulars, t.Category, t.Amount.InexactFloat64(), t.TransactionID}
		if err := setRow(f, transactionsSheet, row, values); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, headerStyle int, s summary.Summary) error {
	if err := writeHeader(f, summarySheet, headerStyle, []string{"Category", "Spent", "Transactions"}); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 18); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	row := 2
	for _, ct := range s.ByCategory {
		if err := setRow(f, summarySheet, row, []any{ct.Category, ct.Total.InexactFloat64(), ct.Count}); err != nil {
			return err
		}
		row++
	}

	row++
	totals := [][]any{
		{"Total income", s.TotalIncome.InexactFloat64()},
		{"Total expenses", s.TotalExpenses.InexactFloat64()},
		{"Net balance", s.NetBalance.InexactFloat64()},
		{"Top category", s.TopCategory},
	}
	for _, vals := range totals {
		if err := setRow(f, summarySheet, row, vals); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	vals := make([]any, len(headers))
	for i, h := range headers {
		vals[i] = h
	}
	if err := setRow(f, sheet, 1, vals); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("setting %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
