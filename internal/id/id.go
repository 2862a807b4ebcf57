package id

import (
	"regexp"
	"strings"

	"github.com/pennywyse/pennywyse/internal/model"
)

const (
	numericLen = 12
	tokenMin   = 16
)

var (
	// digitRun and alnumRun match maximal runs; length checks pick the identifier.
	digitRun = regexp.MustCompile(`[0-9]+`)
	alnumRun = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// Extract returns the transaction identifier embedded in a description.
//
// A run of exactly 12 digits wins (UPI/IMPS reference numbers). Otherwise the
// first alphanumeric token of 16 or more characters is used. Returns "" when
// neither is present.
func Extract(particulars string) string {
	for _, run := range digitRun.FindAllString(particulars, -1) {
		if len(run) == numericLen {
			return run
		}
	}
	for _, tok := range alnumRun.FindAllString(particulars, -1) {
		if len(tok) >= tokenMin {
			return tok
		}
	}
	return ""
}

// Assign fills TransactionID from Particulars on every transaction that does
// not already carry one. It modifies txns in place.
func Assign(txns []model.Transaction) {
	for i := range txns {
		if strings.TrimSpace(txns[i].TransactionID) != "" {
			txns[i].TransactionID = Normalize(txns[i].TransactionID)
			continue
		}
		txns[i].TransactionID = Extract(txns[i].Particulars)
	}
}

// Normalize returns the comparable form of an identifier.
// Spreadsheet round-trips turn "561090480502" into "561090480502.0"; the
// trailing ".0" is dropped so numeric and text forms compare equal.
func Normalize(txnID string) string {
	s := strings.TrimSpace(txnID)
	if strings.HasSuffix(s, ".0") && digitRun.MatchString(s) && len(digitRun.FindString(s)) == len(s)-2 {
		return strings.TrimSuffix(s, ".0")
	}
	return s
}
