package writer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

// Columns is the fixed header row, one column per transaction field.
var Columns = []string{"Tanggal", "Jam", "Uraian", "Teller", "Debet", "Kredit", "Saldo"}

// Writer serializes a statement's transactions.
type Writer interface {
	Write(out io.Writer, info *models.StatementInfo) error
	// Ext is the file extension of the output, including the dot.
	Ext() string
}

// Options configure output formatting.
type Options struct {
	// AmountFormat is the spreadsheet number format for debit, credit and balance.
	AmountFormat string
	Logger       *slog.Logger
}

// New returns the writer for an output format name ("xlsx" or "csv").
func New(format string, opts Options) (Writer, error) {
	switch strings.ToLower(format) {
	case "", "xlsx", "excel":
		return &XLSXWriter{AmountFormat: opts.AmountFormat, Logger: opts.Logger}, nil
	case "csv":
		return &CSVWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}

// WriteToFile writes info to a new file at path.
func WriteToFile(w Writer, path string, info *models.StatementInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	if err := w.Write(f, info); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
