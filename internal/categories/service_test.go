package categories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywyse/pennywyse/internal/categorize"
	"github.com/pennywyse/pennywyse/internal/model"
)

func TestService_Lookup(t *testing.T) {
	svc := NewService(DefaultSet())

	food, ok := svc.Get("food")
	require.True(t, ok)
	assert.Equal(t, "Food", food.Name)
	assert.True(t, food.HasBudget())

	assert.True(t, svc.Exists("EMI"))
	assert.False(t, svc.Exists("Crypto"))

	credits := svc.ByType(model.CategoryTypeCredit)
	require.Len(t, credits, 1)
	assert.Equal(t, "Income", credits[0].Name)
}

func TestService_RulesClassifyExamples(t *testing.T) {
	c := categorize.New(NewService(DefaultSet()).Rules())

	assert.Equal(t, "Food", c.Classify("SWIGGY ORDER #123"))
	assert.Equal(t, "EMI", c.Classify("SBI EDUCATION LOAN EMI"))
	assert.Equal(t, "Other", c.Classify("RANDOM VENDOR XYZ"))
	assert.Equal(t, "Income", c.Classify("NEFT SALARY ACME CORP"))
	assert.Equal(t, "Transport", c.Classify("UBER TRIP"))
	assert.Equal(t, "EMI", c.Classify("NACH DR HDFC HOME FIN"))
	assert.Equal(t, "EMI", c.Classify("BAJAJ FINANCE LTD"))
}

func TestService_RulesShortBankCodes(t *testing.T) {
	c := categorize.New(NewService(DefaultSet()).Rules())

	tests := []struct {
		desc string
		want string
	}{
		{"APOLLO CHEMIST", "Healthcare"},
		{"LIC PREMIUM", "Other"},
		{"SPINACH MART", "Other"},
		{"ACADEMIC FEES", "Other"},
		{"UPI/ZOMATO/REMINDER", "Food"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.desc))
		})
	}
}

func TestService_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories", "categories.csv")
	require.NoError(t, NewService(DefaultSet()).Save(path))

	svc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, svc.All(), len(DefaultSet()))
	assert.Equal(t, "Income", svc.All()[0].Name)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
