package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

// Parser defines the interface for statement layout parsers.
type Parser interface {
	// Parse reads every page of a document and returns its normalized transactions.
	Parse(src PageSource) (*models.StatementInfo, error)
	// LayoutName returns the human-readable layout name.
	LayoutName() string
}

// Options tune parser behaviour that does not affect the recovered records.
type Options struct {
	// Trace records a DebugLine for every non-empty input line.
	Trace bool
}

// New returns the parser for the given layout. An empty layout selects BRI.
func New(layout models.Layout, opts Options) (Parser, error) {
	switch models.Layout(strings.ToLower(string(layout))) {
	case models.LayoutBRI, "brimo", "":
		return &BRIParser{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported statement layout: %q", layout)
	}
}

// BRIParser handles BRI / BRImo account statement PDFs.
//
// Transaction rows look like:
//
//	dd/mm/yy [hh:mm:ss] DESCRIPTION... [TELLER] DEBIT CREDIT BALANCE
//
// with long descriptions wrapping onto following lines. The table opens
// with a "Tanggal Transaksi" / "Transaction Date" header and closes at the
// "Saldo Awal" / "Opening Balance" / "Total Transaksi" summary.
type BRIParser struct {
	opts Options
}

func (p *BRIParser) LayoutName() string {
	return "BRI"
}

func (p *BRIParser) Parse(src PageSource) (*models.StatementInfo, error) {
	info, err := ExtractTable(src, p.opts.Trace)
	if err != nil {
		return nil, err
	}
	info.Layout = models.LayoutBRI
	Normalize(info.Transactions)
	return info, nil
}
