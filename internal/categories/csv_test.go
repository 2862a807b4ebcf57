package categories

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywyse/pennywyse/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cats := DefaultSet()

	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, cats))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadCategories(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(cats))

	for i := range cats {
		assert.Equal(t, cats[i].Name, got[i].Name)
		assert.Equal(t, cats[i].Type, got[i].Type)
		assert.Equal(t, cats[i].Icon, got[i].Icon)
		assert.Equal(t, cats[i].Color, got[i].Color)
		assert.Equal(t, cats[i].Keywords, got[i].Keywords)
		assert.True(t, cats[i].MonthlyBudget.Equal(got[i].MonthlyBudget), "budget mismatch row %d", i)
	}
}

func TestMarshalCategory(t *testing.T) {
	row := MarshalCategory(model.Category{
		Name:          "Food",
		Type:          model.CategoryTypeDebit,
		Keywords:      []string{"swiggy", "zomato"},
		MonthlyBudget: decimal.NewFromInt(8000),
	})
	assert.Equal(t, "swiggy;zomato", row[colKeywords])
	assert.Equal(t, "8000.00", row[colBudget])

	row = MarshalCategory(model.Category{Name: "Other"})
	assert.Empty(t, row[colBudget])
}

func TestUnmarshalCategory_Defaults(t *testing.T) {
	cat, err := UnmarshalCategory([]string{"Gifts", "", "", "", " gift ; ;present", ""})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeDebit, cat.Type)
	assert.Equal(t, []string{"gift", "present"}, cat.Keywords)
	assert.True(t, cat.MonthlyBudget.IsZero())
}

func TestUnmarshalCategory_Errors(t *testing.T) {
	bad := [][]string{
		{"Food", "debit"},
		{"", "debit", "", "", "", ""},
		{"Food", "sideways", "", "", "", ""},
		{"Food", "debit", "", "", "", "lots"},
	}
	for _, rec := range bad {
		_, err := UnmarshalCategory(rec)
		assert.Error(t, err, "record %v", rec)
	}
}

func TestReadCategories_Empty(t *testing.T) {
	got, err := ReadCategories(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}
