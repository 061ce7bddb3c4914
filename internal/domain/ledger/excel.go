// Package ledger loads dated, signed amount records from the spreadsheet and
// CSV sources that statement records are reconciled against.
package ledger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-recon/internal/domain/statement"
)

// Entry is one ledger row: a calendar date, a signed amount, and whatever
// descriptive text the row carried.
type Entry struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reference   string
}

// Common spreadsheet date renderings. Excel cells come back as display
// strings, so several layouts must be tolerated.
var excelDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"01-02-06",
	"2006/01/02",
}

// LoadWorkbook reads ledger entries from the first sheet of an Excel
// workbook. Column layout: date, description, amount (extra columns are
// ignored, the fourth column when present becomes the reference). Rows whose
// date or amount doesn't parse are skipped; real ledgers carry headers,
// subtotals and blank separators, and those are not errors.
func LoadWorkbook(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ledger workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger sheet %q: %w", sheets[0], err)
	}

	var entries []Entry
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}

		date, ok := parseCellDate(row[0])
		if !ok {
			continue
		}
		amount, ok := parseCellAmount(row[2])
		if !ok {
			continue
		}

		entry := Entry{
			Date:        date,
			Description: strings.TrimSpace(row[1]),
			Amount:      amount,
		}
		if len(row) > 3 {
			entry.Reference = strings.TrimSpace(row[3])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseCellDate tries the tolerated date renderings, truncating to the
// calendar day.
func parseCellDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range excelDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return statement.Day(t), true
		}
	}
	return time.Time{}, false
}

// parseCellAmount accepts both statement-style renderings ("(1,234.56)") and
// plain decimals ("-1234.5"), rounded to cents.
func parseCellAmount(cell string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero, false
	}
	if d, ok := statement.ParseAmount(s); ok {
		return d, true
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(2), true
}
