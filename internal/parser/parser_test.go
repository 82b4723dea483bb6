package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

func TestNew(t *testing.T) {
	tests := []struct {
		layout   models.Layout
		wantName string
		wantErr  bool
	}{
		{models.LayoutBRI, "BRI", false},
		{"BRImo", "BRI", false},
		{"", "BRI", false},
		{"hsbc", "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.layout), func(t *testing.T) {
			p, err := New(tt.layout, Options{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.LayoutName())
		})
	}
}

func TestBRIParser_Parse(t *testing.T) {
	p, err := New(models.LayoutBRI, Options{Trace: true})
	require.NoError(t, err)

	pages := TextPages{
		`PT. BANK RAKYAT INDONESIA (PERSERO) Tbk.
Laporan Transaksi Rekening
Tanggal Transaksi   Uraian Transaksi   Teller   Debet   Kredit   Saldo
01/02/23 10:00:00 TRANSFER 1,000.00 0 5,000.00
02/02/23 08:15:30 NBMB BUDI SANTOSO TO   8888   0.00   250,000.00   255,000.00
ANDI WIJAYA
Halaman 1 dari 2`,
		`Tanggal Transaksi   Uraian Transaksi   Teller   Debet   Kredit   Saldo
03/02/23 ATM WITHDRAWAL 100,000.00 0.00 IDR155,000.00
04/02/23 BROKEN
Saldo Awal   Total Transaksi Debet   Total Transaksi Kredit   Saldo Akhir
5,000.00   101,000.00   250,000.00   155,000.00`,
	}

	info, err := p.Parse(pages)
	require.NoError(t, err)

	assert.Equal(t, models.LayoutBRI, info.Layout)
	assert.Equal(t, 2, info.Pages)
	assert.Equal(t, 1, info.Dropped)
	require.Len(t, info.Transactions, 3)

	first := info.Transactions[0]
	assert.Equal(t, "01/02/23", first.Date)
	assert.Equal(t, "10:00:00", first.Time)
	assert.Equal(t, "TRANSFER", first.Description)
	assert.True(t, first.Debit.Value.Equal(decimalOf(t, "1000")), "debit %s", first.Debit.Value)
	assert.True(t, first.Credit.Value.IsZero())
	assert.True(t, first.Balance.Value.Equal(decimalOf(t, "5000")))

	second := info.Transactions[1]
	assert.Equal(t, "8888", second.TellerID)
	// The page footer sits inside the table, so it is merged like any wrapped description.
	assert.Equal(t, "NBMB BUDI SANTOSO TO ANDI WIJAYA Halaman 1 dari 2", second.Description)
	assert.True(t, second.Credit.Value.Equal(decimalOf(t, "250000")))

	third := info.Transactions[2]
	assert.Equal(t, "", third.Time)
	assert.Equal(t, "ATM WITHDRAWAL", third.Description)
	assert.Equal(t, "100,000.00", third.Debit.Raw)
	assert.True(t, third.Debit.Value.Equal(decimalOf(t, "100000")))
	assert.Equal(t, "IDR155,000.00", third.Balance.Raw)
	assert.True(t, third.Balance.Value.Equal(decimalOf(t, "155000")))

	var dropped []models.DebugLine
	for _, dl := range info.DebugLines {
		if dl.Result == "dropped" {
			dropped = append(dropped, dl)
		}
	}
	require.Len(t, dropped, 1)
	assert.Equal(t, "04/02/23 BROKEN", dropped[0].Text)
	assert.Equal(t, 2, dropped[0].Page)
}

func TestBRIParser_ParseWithoutTrace(t *testing.T) {
	p, err := New(models.LayoutBRI, Options{})
	require.NoError(t, err)

	info, err := p.Parse(TextPages{"Tanggal Transaksi\n01/02/23 A 1 2 3"})
	require.NoError(t, err)
	assert.Len(t, info.Transactions, 1)
	assert.Empty(t, info.DebugLines)
}
