package ledger

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookFromRows(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestLoadWorkbook(t *testing.T) {
	buf := workbookFromRows(t, [][]any{
		{"Date", "Description", "Amount", "Reference"}, // header skipped: no date
		{"2024-03-04", "DIRECT DEP PAYROLL", "2100.00", ""},
		{"03/11/2024", "CHECK 1041", "(250.00)", "99382710"},
		{"", "", ""}, // blank separator
		{"3/14/2024", "CHECK 1042", "-125.5", ""},
		{"Subtotal", "", "1724.50"}, // date fails to parse, skipped
	})

	entries, err := LoadWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, "DIRECT DEP PAYROLL", entries[0].Description)
	assert.Equal(t, "2100.00", entries[0].Amount.StringFixed(2))

	// parenthesized amounts come in negative
	assert.Equal(t, "-250.00", entries[1].Amount.StringFixed(2))
	assert.Equal(t, "99382710", entries[1].Reference)

	// plain decimals are tolerated alongside statement-style renderings
	assert.Equal(t, "-125.50", entries[2].Amount.StringFixed(2))
}

func TestLoadWorkbook_ShortRows(t *testing.T) {
	buf := workbookFromRows(t, [][]any{
		{"2024-03-04"},
		{"2024-03-05", "only two columns"},
		{"2024-03-06", "complete", "10.00"},
	})

	entries, err := LoadWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "complete", entries[0].Description)
}

func TestLoadWorkbook_NotASpreadsheet(t *testing.T) {
	_, err := LoadWorkbook(bytes.NewBufferString("this is not a workbook"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to open ledger workbook")
}
