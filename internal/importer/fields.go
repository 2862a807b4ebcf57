package importer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	fieldDate        = "Date"
	fieldParticulars = "Particulars"
	fieldAmount      = "Amount"
)

// Header aliases, lowercase. The first entry is the canonical name.
var (
	dateAliases        = []string{"date", "txn date", "transaction date", "value date"}
	particularsAliases = []string{"particulars", "description", "narration", "details"}
	amountAliases      = []string{"amount", "amount (inr)", "amt"}
	categoryAliases    = []string{"category"}
	txnIDAliases       = []string{"transaction_id", "txn_id", "transaction id", "reference", "ref no"}
)

// columns maps field roles to header indexes; -1 = absent.
type columns struct {
	header      []string
	date        int
	particulars int
	amount      int
	category    int
	txnID       int
	extra       []int
}

func resolveColumns(header []string) (columns, error) {
	c := columns{header: header, date: -1, particulars: -1, amount: -1, category: -1, txnID: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case c.date < 0 && contains(dateAliases, name):
			c.date = i
		case c.particulars < 0 && contains(particularsAliases, name):
			c.particulars = i
		case c.amount < 0 && contains(amountAliases, name):
			c.amount = i
		case c.category < 0 && contains(categoryAliases, name):
			c.category = i
		case c.txnID < 0 && contains(txnIDAliases, name):
			c.txnID = i
		default:
			c.extra = append(c.extra, i)
		}
	}

	switch {
	case c.date < 0:
		return c, &MissingColumnError{Column: fieldDate, Header: header}
	case c.particulars < 0:
		return c, &MissingColumnError{Column: fieldParticulars, Header: header}
	case c.amount < 0:
		return c, &MissingColumnError{Column: fieldAmount, Header: header}
	}
	return c, nil
}

func (c columns) candidate(row int, rec []string, layout string) Candidate {
	cand := Candidate{
		Row:           row,
		RawDate:       field(rec, c.date),
		Particulars:   field(rec, c.particulars),
		Category:      field(rec, c.category),
		RawAmount:     field(rec, c.amount),
		TransactionID: field(rec, c.txnID),
	}
	cand.Date = parseDate(cand.RawDate, layout)
	cand.Amount = parseAmount(cand.RawAmount)

	for _, i := range c.extra {
		v := field(rec, i)
		if v == "" {
			continue
		}
		if cand.Extra == nil {
			cand.Extra = make(map[string]string)
		}
		cand.Extra[strings.TrimSpace(c.header[i])] = v
	}
	return cand
}

// field returns the trimmed value at i, or "" when absent or short.
func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseDate parses s with the fixed layout. Anything else is the zero time.
// "02/01/2006" needs a zero-padded day and month; "2/1/2006" takes either.
func parseDate(s, layout string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// currencyTokens are removed from amounts before parsing. Longer tokens first.
var currencyTokens = []string{"INR", "USD", "EUR", "GBP", "Rs.", "Rs", "₹", "$", "€", "£", "¥"}

// parseAmount strips separators, currency and a leading "+", then parses a
// decimal. Failures are returned as an invalid NullDecimal, never zero.
func parseAmount(s string) decimal.NullDecimal {
	v := strings.ReplaceAll(s, ",", "")
	for _, tok := range currencyTokens {
		v = strings.ReplaceAll(v, tok, "")
	}
	v = strings.Join(strings.Fields(v), "")
	v = strings.TrimPrefix(v, "+")
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
