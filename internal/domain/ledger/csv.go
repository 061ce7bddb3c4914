package ledger

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/statement-recon/pkg/money"
)

// CanonicalRow is the textual record format used for cross-component
// exchange: ISO-8601 date (or empty), UTF-8 description (possibly empty),
// amount with exactly two fraction digits, optional reference.
type CanonicalRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Reference   string `csv:"reference"`
}

const canonicalDateLayout = "2006-01-02"

// ToRow converts an entry to its canonical textual form. A zero date becomes
// an empty string, per the exchange contract.
func ToRow(e Entry) CanonicalRow {
	row := CanonicalRow{
		Description: e.Description,
		Amount:      money.String(e.Amount),
		Reference:   e.Reference,
	}
	if !e.Date.IsZero() {
		row.Date = e.Date.Format(canonicalDateLayout)
	}
	return row
}

// FromRow parses a canonical row back into an entry. An empty date string
// yields a zero date; a malformed date or amount is an error, since canonical
// rows are machine-produced and a bad one means a broken producer.
func FromRow(row CanonicalRow) (Entry, error) {
	e := Entry{
		Description: row.Description,
		Reference:   row.Reference,
	}

	if row.Date != "" {
		t, err := time.Parse(canonicalDateLayout, row.Date)
		if err != nil {
			return Entry{}, fmt.Errorf("invalid canonical date %q: %w", row.Date, err)
		}
		e.Date = t.UTC()
	}

	amount, err := money.ParseSigned(row.Amount)
	if err != nil {
		return Entry{}, err
	}
	e.Amount = amount
	return e, nil
}

// WriteCSV writes entries in canonical form.
func WriteCSV(w io.Writer, entries []Entry) error {
	rows := make([]CanonicalRow, len(entries))
	for i, e := range entries {
		rows[i] = ToRow(e)
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write canonical CSV: %w", err)
	}
	return nil
}

// ReadCSV reads entries in canonical form.
func ReadCSV(r io.Reader) ([]Entry, error) {
	var rows []CanonicalRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse canonical CSV: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		e, err := FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
