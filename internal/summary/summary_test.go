package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywyse/pennywyse/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func txn(d time.Time, amount, category string) model.Transaction {
	return model.Transaction{Date: d, Particulars: category, Category: category, Amount: decimal.RequireFromString(amount)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_Example(t *testing.T) {
	day := date(2025, 1, 10)
	s := Compute([]model.Transaction{
		txn(day, "1000", "Income"),
		txn(day, "-300", "Food"),
		txn(day, "-200", "Food"),
		txn(day, "-100", "Transport"),
	})

	assert.True(t, s.TotalIncome.Equal(dec("1000")), "income: %s", s.TotalIncome)
	assert.True(t, s.TotalExpenses.Equal(dec("600")), "expenses: %s", s.TotalExpenses)
	assert.True(t, s.NetBalance.Equal(dec("400")), "net: %s", s.NetBalance)
	assert.Equal(t, "Food", s.TopCategory)
	assert.Equal(t, 4, s.Count)

	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, "Food", s.ByCategory[0].Category)
	assert.True(t, s.ByCategory[0].Total.Equal(dec("500")))
	assert.Equal(t, 2, s.ByCategory[0].Count)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpenses.IsZero())
	assert.True(t, s.NetBalance.IsZero())
	assert.Equal(t, NoCategory, s.TopCategory)
	assert.Empty(t, s.ByCategory)
	assert.Nil(t, s.LastIncome)
}

func TestCompute_IncomeOnly(t *testing.T) {
	s := Compute([]model.Transaction{txn(date(2025, 1, 1), "50", "Income"), txn(date(2025, 1, 2), "0", "Other")})
	assert.Equal(t, NoCategory, s.TopCategory)
	assert.True(t, s.NetBalance.Equal(dec("50")))
}

func TestCompute_Rounding(t *testing.T) {
	day := date(2025, 1, 1)
	s := Compute([]model.Transaction{
		txn(day, "0.105", "Income"),
		txn(day, "0.001", "Income"),
		txn(day, "-10.004", "Food"),
	})
	assert.Equal(t, "0.11", s.TotalIncome.StringFixed(2))
	assert.Equal(t, "10.00", s.TotalExpenses.StringFixed(2))
	assert.Equal(t, "-9.89", s.NetBalance.StringFixed(2))
}

func TestCompute_TopCategoryTieBreak(t *testing.T) {
	day := date(2025, 1, 1)
	s := Compute([]model.Transaction{txn(day, "-100", "Rent"), txn(day, "-100", "EMI")})
	assert.Equal(t, "EMI", s.TopCategory)
}

func TestCompute_LastIncome(t *testing.T) {
	s := Compute([]model.Transaction{
		txn(date(2025, 1, 1), "168256", "Income"),
		txn(date(2025, 2, 1), "170000", "Income"),
		txn(date(2025, 3, 1), "500", "Other"),
	})
	require.NotNil(t, s.LastIncome)
	assert.True(t, s.LastIncome.Amount.Equal(dec("170000")))
}

func TestFilter(t *testing.T) {
	txns := []model.Transaction{
		txn(date(2025, 1, 1), "-1", "A"),
		txn(date(2025, 1, 15), "-1", "B"),
		txn(date(2025, 2, 1), "-1", "C"),
	}
	assert.Len(t, Filter(txns, date(2025, 1, 15), time.Time{}), 2)
	assert.Len(t, Filter(txns, time.Time{}, date(2025, 1, 15)), 2)
	assert.Len(t, Filter(txns, date(2025, 1, 2), date(2025, 1, 31)), 1)
	assert.Len(t, Filter(txns, time.Time{}, time.Time{}), 3)
}

func TestByCategory(t *testing.T) {
	txns := []model.Transaction{txn(date(2025, 1, 1), "-1", "Food"), txn(date(2025, 1, 1), "-1", "Rent")}
	got := ByCategory(txns, "Food")
	require.Len(t, got, 1)
	assert.Equal(t, "Food", got[0].Category)

	assert.Len(t, ByCategory(txns, "food"), 1)
}
