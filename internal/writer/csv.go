package writer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

// CSVWriter writes transactions as CSV with the same columns as the workbook.
type CSVWriter struct{}

type csvRow struct {
	Date        string `csv:"Tanggal"`
	Time        string `csv:"Jam"`
	Description string `csv:"Uraian"`
	TellerID    string `csv:"Teller"`
	Debit       string `csv:"Debet"`
	Credit      string `csv:"Kredit"`
	Balance     string `csv:"Saldo"`
}

func (w *CSVWriter) Ext() string { return ".csv" }

// Write writes the header and one row per transaction, amounts as plain decimals.
func (w *CSVWriter) Write(out io.Writer, info *models.StatementInfo) error {
	rows := make([]csvRow, 0, len(info.Transactions))
	for _, txn := range info.Transactions {
		rows = append(rows, csvRow{
			Date:        txn.Date,
			Time:        txn.Time,
			Description: txn.Description,
			TellerID:    txn.TellerID,
			Debit:       txn.Debit.Value.String(),
			Credit:      txn.Credit.Value.String(),
			Balance:     txn.Balance.Value.String(),
		})
	}

	if err := gocsv.Marshal(&rows, out); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
