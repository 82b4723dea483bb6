package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

// Currency markers printed next to amounts on Indonesian statements.
var currencyMarkers = []string{"IDR", "Rp"}

// NormalizeAmount converts a raw amount token such as "1,234.56" or
// "IDR 5,000.00" into a decimal. Anything that does not parse as a number
// after cleaning becomes zero.
func NormalizeAmount(raw string) decimal.Decimal {
	s := strings.ReplaceAll(raw, ",", "")
	for _, m := range currencyMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Normalize fills in the numeric value of every debit, credit and balance.
// Values are always recomputed from the raw tokens, so running it again
// changes nothing.
func Normalize(txns []models.Transaction) {
	for i := range txns {
		t := &txns[i]
		t.Debit.Value = NormalizeAmount(t.Debit.Raw)
		t.Credit.Value = NormalizeAmount(t.Credit.Raw)
		t.Balance.Value = NormalizeAmount(t.Balance.Raw)
	}
}
