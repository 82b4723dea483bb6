// Package csvconv turns BRI transaction CSV exports into formatted
// workbooks: account numbers kept as text, effective dates spelled out in
// Indonesian, HHMMSS times given colons and amount columns formatted.
package csvconv

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ColAccount = "NOREK"
	ColDate    = "TGL_EFEKTIF"
	ColTime    = "JAM_TRAN"

	sheetName    = "Sheet1"
	amountFormat = "#,##0.00"
	// textNumFmt is the built-in "@" (text) number format.
	textNumFmt = 49
	// Amount columns are H through K of the export.
	firstAmountCol = 8
	lastAmountCol  = 11
	maxColWidth    = 255
)

// ErrMissingColumn is returned when the export lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// dateLayouts are tried in order; slash dates are month first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"02-Jan-2006",
	"02 Jan 2006",
	"20060102",
}

// FormatDate renders an effective date as "07 Oktober 2025". An empty
// value stays empty.
func FormatDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fmt.Sprintf("%02d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year()), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// FormatTime renders a numeric HHMMSS time such as 124141 (or 124141.0)
// as 12:41:41, left-padding short values with zeros.
func FormatTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s, _, _ = strings.Cut(s, ".")
	if len(s) < 6 {
		s = strings.Repeat("0", 6-len(s)) + s
	}
	return s[:2] + ":" + s[2:4] + ":" + s[4:]
}

// ConvertFile converts the CSV at in into a workbook at out.
func ConvertFile(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	wb, err := build(f)
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := wb.SaveAs(out); err != nil {
		return fmt.Errorf("saving %s: %w", out, err)
	}
	return nil
}

// Convert reads a CSV export from r and writes the workbook to w.
func Convert(r io.Reader, w io.Writer) error {
	wb, err := build(r)
	if err != nil {
		return err
	}
	defer wb.Close()
	return wb.Write(w)
}

// ConvertAll converts each CSV to a workbook beside it, logging every
// outcome. A failed file does not stop the others.
func ConvertAll(paths []string, logger *slog.Logger) (converted, failed int) {
	for _, in := range paths {
		out := strings.TrimSuffix(in, filepath.Ext(in)) + ".xlsx"
		if err := ConvertFile(in, out); err != nil {
			logger.Error("csv conversion failed", "file", in, "error", err)
			failed++
			continue
		}
		logger.Info("csv converted", "file", in, "output", out)
		converted++
	}
	return converted, failed
}

func build(r io.Reader) (*excelize.File, error) {
	records, err := gocsv.LazyCSVReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("CSV has no header row")
	}

	header := records[0]
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{ColAccount, ColDate, ColTime} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	wb := excelize.NewFile()
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := wb.SetSheetRow(sheetName, "A1", &header); err != nil {
		wb.Close()
		return nil, err
	}

	for n, rec := range records[1:] {
		rowNum := n + 2
		row := make([]interface{}, len(rec))
		for i, v := range rec {
			cellText, cellValue, err := convertCell(i, v, cols)
			if err != nil {
				wb.Close()
				return nil, fmt.Errorf("row %d: %w", rowNum, err)
			}
			row[i] = cellValue
			if i < len(widths) {
				if w := utf8.RuneCountInString(cellText); w > widths[i] {
					widths[i] = w
				}
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := wb.SetSheetRow(sheetName, cell, &row); err != nil {
			wb.Close()
			return nil, err
		}
	}

	if err := formatSheet(wb, len(records)-1, cols[ColAccount], widths); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}

// convertCell returns the display text and the value to store for column i.
func convertCell(i int, v string, cols map[string]int) (string, interface{}, error) {
	switch i {
	case cols[ColAccount]:
		return v, v, nil
	case cols[ColDate]:
		s, err := FormatDate(v)
		return s, s, err
	case cols[ColTime]:
		s := FormatTime(v)
		return s, s, nil
	}

	if i+1 >= firstAmountCol && i+1 <= lastAmountCol {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d.String(), d.InexactFloat64(), nil
		}
	}
	return v, v, nil
}

func formatSheet(wb *excelize.File, rows, accountCol int, widths []int) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(w + 2)
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := wb.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}
	if rows == 0 {
		return nil
	}

	numFmt := amountFormat
	amountStyle, err := wb.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	textStyle, err := wb.NewStyle(&excelize.Style{NumFmt: textNumFmt})
	if err != nil {
		return err
	}

	if len(widths) >= firstAmountCol {
		last := min(lastAmountCol, len(widths))
		top, _ := excelize.CoordinatesToCellName(firstAmountCol, 2)
		bottom, _ := excelize.CoordinatesToCellName(last, rows+1)
		if err := wb.SetCellStyle(sheetName, top, bottom, amountStyle); err != nil {
			return err
		}
	}

	top, _ := excelize.CoordinatesToCellName(accountCol+1, 2)
	bottom, _ := excelize.CoordinatesToCellName(accountCol+1, rows+1)
	return wb.SetCellStyle(sheetName, top, bottom, textStyle)
}
