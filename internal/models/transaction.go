package models

import "github.com/shopspring/decimal"

// Transaction is one row recovered from a statement's transaction table.
type Transaction struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	TellerID    string `json:"tellerId"`
	Debit       Amount `json:"debit"`
	Credit      Amount `json:"credit"`
	Balance     Amount `json:"balance"`
}

// Amount keeps the token as it appeared on the statement next to its
// normalized value. Value stays zero until the normalizer has run.
type Amount struct {
	Raw   string          `json:"raw"`
	Value decimal.Decimal `json:"value"`
}

// RawAmount wraps an unnormalized token.
func RawAmount(raw string) Amount {
	return Amount{Raw: raw}
}

// Layout identifies a statement table convention.
type Layout string

const (
	// LayoutBRI is the BRI / BRImo account statement: leading dd/mm/yy
	// date, optional time, description, optional teller id, then debit,
	// credit and balance columns.
	LayoutBRI Layout = "bri"
)

// DebugLine captures what the parser did with each input line.
type DebugLine struct {
	Page    int    `json:"page"`
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"` // "table_start", "table_end", "record", "continuation", "noise", "dropped"
}

// StatementInfo holds everything recovered from one document.
type StatementInfo struct {
	Layout       Layout
	Pages        int
	Dropped      int // lines that looked like records but could not be parsed
	Transactions []Transaction
	DebugLines   []DebugLine
}

// DocumentStatus is the per-document outcome reported to the operator.
type DocumentStatus string

const (
	StatusConverted DocumentStatus = "converted"
	StatusEmpty     DocumentStatus = "empty"
	StatusFailed    DocumentStatus = "failed"
)
