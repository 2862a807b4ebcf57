package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pennywyse/pennywyse/internal/model"
)

// Header is the CSV header for categories.csv.
const Header = "name,type,icon,color,keywords,monthly_budget"

const (
	numFields   = 6
	colName     = 0
	colType     = 1
	colIcon     = 2
	colColor    = 3
	colKeywords = 4
	colBudget   = 5

	keywordSep = ";"
)

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		cat, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// WriteCategories writes categories.csv.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, cat := range cats {
		if err := cw.Write(MarshalCategory(cat)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(cat model.Category) []string {
	row := make([]string, numFields)
	row[colName] = cat.Name
	row[colType] = string(cat.Type)
	row[colIcon] = cat.Icon
	row[colColor] = cat.Color
	row[colKeywords] = strings.Join(cat.Keywords, keywordSep)
	if cat.HasBudget() {
		row[colBudget] = cat.MonthlyBudget.StringFixed(2)
	}
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.Category{}, fmt.Errorf("empty category name")
	}

	catType := model.CategoryType(strings.ToLower(strings.TrimSpace(record[colType])))
	switch catType {
	case model.CategoryTypeDebit, model.CategoryTypeCredit:
	case "":
		catType = model.CategoryTypeDebit
	default:
		return model.Category{}, fmt.Errorf("invalid type %q for category %q", record[colType], name)
	}

	var budget decimal.Decimal
	if record[colBudget] != "" {
		var err error
		budget, err = decimal.NewFromString(record[colBudget])
		if err != nil {
			return model.Category{}, fmt.Errorf("parsing monthly_budget %q: %w", record[colBudget], err)
		}
	}

	var keywords []string
	for _, kw := range strings.Split(record[colKeywords], keywordSep) {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return model.Category{
		Name:          name,
		Type:          catType,
		Icon:          record[colIcon],
		Color:         record[colColor],
		Keywords:      keywords,
		MonthlyBudget: budget,
	}, nil
}
