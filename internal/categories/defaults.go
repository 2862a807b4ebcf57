package categories

import (
	"github.com/shopspring/decimal"

	"github.com/pennywyse/pennywyse/internal/model"
)

// DefaultSet returns the starter category set written by `pennywyse init`.
// Order matters: the categorizer tries categories top to bottom. Keywords are
// plain substrings, so short bank codes sit last and are spelled out in full.
func DefaultSet() []model.Category {
	return []model.Category{
		{Name: "Income", Type: model.CategoryTypeCredit, Icon: "💰", Color: "#00FFA3", Keywords: []string{"salary", "neft cr", "interest credit", "refund", "cashback", "dividend"}},
		{Name: "Rent", Type: model.CategoryTypeDebit, Icon: "🏠", Color: "#FF6B6B", Keywords: []string{"house rent", "rent paid", "rental", "landlord", "nobroker"}},
		{Name: "Food", Type: model.CategoryTypeDebit, Icon: "🍔", Color: "#FFD43B", Keywords: []string{"swiggy", "zomato", "restaurant", "cafe", "dominos", "blinkit", "zepto"}, MonthlyBudget: decimal.NewFromInt(8000)},
		{Name: "Shopping", Type: model.CategoryTypeDebit, Icon: "🛍", Color: "#DA77F2", Keywords: []string{"amazon", "flipkart", "myntra", "ajio", "nykaa"}},
		{Name: "Transport", Type: model.CategoryTypeDebit, Icon: "🚕", Color: "#4DABF7", Keywords: []string{"uber", "rapido", "irctc", "metro", "petrol", "fuel", "fastag"}},
		{Name: "Utilities", Type: model.CategoryTypeDebit, Icon: "💡", Color: "#69DB7C", Keywords: []string{"electricity", "broadband", "airtel", "jio", "recharge", "water bill", "gas bill"}},
		{Name: "Entertainment", Type: model.CategoryTypeDebit, Icon: "🎬", Color: "#F783AC", Keywords: []string{"netflix", "spotify", "hotstar", "bookmyshow", "pvr"}},
		{Name: "Healthcare", Type: model.CategoryTypeDebit, Icon: "🩺", Color: "#38D9A9", Keywords: []string{"pharmacy", "hospital", "apollo", "clinic", "medplus", "1mg"}},
		{Name: "EMI", Type: model.CategoryTypeDebit, Icon: "🏦", Color: "#FFA94D", Keywords: []string{"loan", "emi debit", "emi dr", "nach dr", "nach debit", "ach dr", "bajaj finance"}},
		{Name: "Other", Type: model.CategoryTypeDebit, Icon: "📦", Color: "#ADB5BD"},
	}
}
