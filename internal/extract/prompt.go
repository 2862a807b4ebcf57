package extract

import (
	"fmt"
	"strings"
)

// Prompt returns the extraction instructions. dateLayout is a Go time layout
// and is shown to the model in DD/MM/YYYY form.
func Prompt(dateLayout string) string {
	if dateLayout == "" {
		dateLayout = "02/01/2006"
	}
	return fmt.Sprintf(`Analyze this document. Extract all transactions into a table with columns:
Date, Particulars, Amount, Transaction_ID.
Write every Date as %s.
If it's a spend, make the Amount negative. If it's income, keep it positive.
Leave Transaction_ID empty when the document shows no reference number.
Return ONLY a CSV format, with the header row first.
`, humanLayout(dateLayout))
}

var layoutTokens = strings.NewReplacer(
	"2006", "YYYY",
	"01", "MM",
	"02", "DD",
	"Jan", "MMM",
)

func humanLayout(layout string) string {
	return layoutTokens.Replace(layout)
}
