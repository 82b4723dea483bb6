package parser

import (
	"errors"
	"strings"
	"unicode"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

// ErrShortLine is returned when a record line has too few tokens after the
// date to hold the debit, credit and balance columns.
var ErrShortLine = errors.New("line too short for debit, credit and balance")

// tellerMinTokens is the token count a line must exceed before the token
// left of the debit column is considered as a teller id.
const tellerMinTokens = 4

// ParseTransaction builds a record from the tokens of a line whose first
// token is the transaction date.
//
// The numeric columns are right aligned, so fields are taken from the right:
// balance, credit, debit, then an optional all-digit teller id. Whatever sits
// between the date (and time, when present) and those columns is the
// description. A description that ends in a bare number is therefore read as
// a teller id; that ambiguity is inherent to the layout.
func ParseTransaction(tokens []string) (models.Transaction, error) {
	if len(tokens) == 0 {
		return models.Transaction{}, ErrShortLine
	}

	txn := models.Transaction{Date: tokens[0]}

	start := 1
	if len(tokens) > 1 && strings.Contains(tokens[1], ":") {
		txn.Time = tokens[1]
		start = 2
	}

	if len(tokens)-1 < 3 {
		return models.Transaction{}, ErrShortLine
	}

	n := len(tokens)
	txn.Balance = models.RawAmount(tokens[n-1])
	txn.Credit = models.RawAmount(tokens[n-2])
	txn.Debit = models.RawAmount(tokens[n-3])

	end := n - 3
	if n > tellerMinTokens && isTellerID(tokens[n-4]) {
		txn.TellerID = tokens[n-4]
		end = n - 4
	}

	if start < end {
		txn.Description = strings.Join(tokens[start:end], " ")
	}

	return txn, nil
}

// isTellerID reports whether tok is made only of digits once periods are removed.
func isTellerID(tok string) bool {
	digits := strings.ReplaceAll(tok, ".", "")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
