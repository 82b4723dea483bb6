package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransaction(t *testing.T) {
	tests := []struct {
		name        string
		tokens      []string
		date        string
		time        string
		description string
		teller      string
		debit       string
		credit      string
		balance     string
	}{
		{
			name:        "teller id left of debit",
			tokens:      []string{"01/02/23", "10:00:00", "PAYMENT", "FEE", "123", "100", "200", "900"},
			date:        "01/02/23",
			time:        "10:00:00",
			description: "PAYMENT FEE",
			teller:      "123",
			debit:       "100", credit: "200", balance: "900",
		},
		{
			name:        "teller id containing periods",
			tokens:      []string{"01/02/23", "10:00:00", "PAYMENT", "FEE", "123", ".456", "100", "200", "900"},
			date:        "01/02/23",
			time:        "10:00:00",
			description: "PAYMENT FEE 123",
			teller:      ".456",
			debit:       "100", credit: "200", balance: "900",
		},
		{
			name:        "word left of debit stays in description",
			tokens:      []string{"01/02/23", "10:00:00", "PAYMENT", "FEE", "NOTE", "100", "200", "900"},
			date:        "01/02/23",
			time:        "10:00:00",
			description: "PAYMENT FEE NOTE",
			debit:       "100", credit: "200", balance: "900",
		},
		{
			name:        "no time",
			tokens:      []string{"01/02/23", "TRANSFER", "KE", "BNI", "1,000.00", "0.00", "5,000.00"},
			date:        "01/02/23",
			description: "TRANSFER KE BNI",
			debit:       "1,000.00", credit: "0.00", balance: "5,000.00",
		},
		{
			name:    "numbers only",
			tokens:  []string{"01/02/23", "1", "2", "3"},
			date:    "01/02/23",
			debit:   "1", credit: "2", balance: "3",
		},
		{
			name:   "time and numbers only",
			tokens: []string{"01/02/23", "10:00:00", "1", "2", "3"},
			date:   "01/02/23",
			time:   "10:00:00",
			debit:  "1", credit: "2", balance: "3",
		},
		{
			name:        "teller id alone",
			tokens:      []string{"01/02/23", "10:00:00", "777", "1", "2", "3"},
			date:        "01/02/23",
			time:        "10:00:00",
			teller:      "777",
			debit:       "1", credit: "2", balance: "3",
		},
		{
			name:        "lone period is not a teller id",
			tokens:      []string{"01/02/23", "BIAYA", ".", "1", "2", "3"},
			date:        "01/02/23",
			description: "BIAYA .",
			debit:       "1", credit: "2", balance: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := ParseTransaction(tt.tokens)
			require.NoError(t, err)

			assert.Equal(t, tt.tokens[0], txn.Date)
			assert.Equal(t, tt.date, txn.Date)
			assert.Equal(t, tt.time, txn.Time)
			assert.Equal(t, tt.description, txn.Description)
			assert.Equal(t, tt.teller, txn.TellerID)
			assert.Equal(t, tt.debit, txn.Debit.Raw)
			assert.Equal(t, tt.credit, txn.Credit.Raw)
			assert.Equal(t, tt.balance, txn.Balance.Raw)
			assert.True(t, txn.Debit.Value.IsZero(), "values are filled in by Normalize")
		})
	}
}

func TestParseTransaction_ShortLines(t *testing.T) {
	tests := [][]string{
		nil,
		{"01/02/23"},
		{"01/02/23", "10:00:00"},
		{"01/02/23", "TRANSFER", "5,000.00"},
		{"01/02/23", "10:00:00", "5,000.00"},
	}

	for _, tokens := range tests {
		txn, err := ParseTransaction(tokens)
		assert.ErrorIs(t, err, ErrShortLine, "tokens %q", tokens)
		assert.Empty(t, txn.Date, "no partial record for %q", tokens)
	}
}
