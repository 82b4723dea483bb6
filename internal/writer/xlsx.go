package writer

import (
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

const (
	// DefaultAmountFormat renders thousands separators in the reader's locale.
	DefaultAmountFormat = "#,##0"
	sheetName           = "Sheet1"
	// maxColWidth is the widest column Excel accepts.
	maxColWidth = 255
	// First and last amount columns (Debet..Saldo).
	firstAmountCol = 5
	lastAmountCol  = 7
)

// XLSXWriter writes transactions to a single-sheet workbook.
type XLSXWriter struct {
	AmountFormat string
	Logger       *slog.Logger
}

func (w *XLSXWriter) Ext() string { return ".xlsx" }

// Write writes the workbook to out. Column sizing and number formats are
// best effort: a failure there is logged and the data is still written.
func (w *XLSXWriter) Write(out io.Writer, info *models.StatementInfo) error {
	f := excelize.NewFile()
	defer f.Close()

	widths := make([]int, len(Columns))
	if err := f.SetSheetRow(sheetName, "A1", &Columns); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, c := range Columns {
		widths[i] = utf8.RuneCountInString(c)
	}

	for i, txn := range info.Transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			txn.Date,
			txn.Time,
			txn.Description,
			txn.TellerID,
			txn.Debit.Value.InexactFloat64(),
			txn.Credit.Value.InexactFloat64(),
			txn.Balance.Value.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}

		texts := []string{
			txn.Date, txn.Time, txn.Description, txn.TellerID,
			txn.Debit.Value.String(), txn.Credit.Value.String(), txn.Balance.Value.String(),
		}
		for c, s := range texts {
			if n := utf8.RuneCountInString(s); n > widths[c] {
				widths[c] = n
			}
		}
	}

	if err := w.format(f, len(info.Transactions), widths); err != nil {
		w.logger().Warn("xlsx formatting skipped", "error", err)
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// format auto-fits every column and applies the amount number format to
// the debit, credit and balance cells below the header.
func (w *XLSXWriter) format(f *excelize.File, rows int, widths []int) error {
	if err := autofit(f, sheetName, widths); err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	numFmt := w.AmountFormat
	if numFmt == "" {
		numFmt = DefaultAmountFormat
	}
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}

	top, _ := excelize.CoordinatesToCellName(firstAmountCol, 2)
	bottom, _ := excelize.CoordinatesToCellName(lastAmountCol, rows+1)
	return f.SetCellStyle(sheetName, top, bottom, style)
}

// autofit sets each column width to its longest cell plus padding.
func autofit(f *excelize.File, sheet string, widths []int) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(w + 2)
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("setting width of column %s: %w", col, err)
		}
	}
	return nil
}

func (w *XLSXWriter) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
