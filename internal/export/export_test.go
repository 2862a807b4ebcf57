package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pennywyse/pennywyse/internal/ledger"
	"github.com/pennywyse/pennywyse/internal/model"
)

func testTransactions() []model.Transaction {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	return []model.Transaction{
		{Date: day(5), Particulars: "SALARY", Category: "Income", Amount: decimal.NewFromInt(1000)},
		{Date: day(4), Particulars: "SWIGGY", Category: "Food", Amount: decimal.NewFromInt(-300), TransactionID: "561090480502"},
		{Date: day(3), Particulars: "ZOMATO", Category: "Food", Amount: decimal.NewFromInt(-200)},
		{Date: day(2), Particulars: "UBER", Category: "Transport", Amount: decimal.RequireFromString("-100.50")},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", CSV, false},
		{"CSV", CSV, false},
		{" xlsx ", XLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, testTransactions()))

	got, err := ledger.ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "561090480502", got[1].TransactionID)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, testTransactions()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Transactions", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Date", "Particulars", "Category", "Amount", "txn_id"}, rows[0])
	assert.Equal(t, "2025-01-04", rows[2][0])
	assert.Equal(t, "SWIGGY", rows[2][1])
	amount, err := decimal.NewFromString(rows[4][3])
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("-100.5")))

	rows, err = f.GetRows("Summary")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "Food", rows[1][0])
	assert.Equal(t, "Transport", rows[2][0])

	top := rows[len(rows)-1]
	assert.Equal(t, []string{"Top category", "Food"}, top)
}

func TestContentType(t *testing.T) {
	assert.Contains(t, CSV.ContentType(), "text/csv")
	assert.Contains(t, XLSX.ContentType(), "spreadsheetml")
}
