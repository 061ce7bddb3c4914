package recon

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/statement-recon/pkg/money"
)

// FindingRow is one report discrepancy in the canonical textual form: kind,
// ISO date (or empty for undated findings), amount with two fraction digits,
// occurrence count, free-text detail.
type FindingRow struct {
	Kind   string `csv:"kind"`
	Date   string `csv:"date"`
	Amount string `csv:"amount"`
	Count  int    `csv:"count"`
	Detail string `csv:"detail"`
}

// Finding kinds used in exported rows.
const (
	RowMissing      = "missing"
	RowExtra        = "extra"
	RowReturnOrphan = "return_not_found"
	RowNeverRepaid  = "return_never_repaid"
	RowSplit        = "split_resolved"
	RowUnmatched    = "unmatched_reference"
	RowUnmatchedExt = "unmatched_candidate"
)

const rowDateLayout = "2006-01-02"

// Rows flattens every discrepancy in the report into canonical rows, in
// report order: per-date findings, return events, splits, leftovers.
func (r *Report) Rows() []FindingRow {
	var out []FindingRow

	for _, f := range r.Findings {
		date := f.Date.Format(rowDateLayout)
		for _, mc := range f.Missing {
			out = append(out, FindingRow{
				Kind: RowMissing, Date: date,
				Amount: money.String(mc.Amount), Count: mc.Count,
			})
		}
		for _, xc := range f.Extra {
			out = append(out, FindingRow{
				Kind: RowExtra, Date: date,
				Amount: money.String(xc.Amount), Count: xc.Count,
			})
		}
	}

	for _, ev := range r.ReturnEvents {
		switch {
		case !ev.Resolved:
			out = append(out, FindingRow{
				Kind: RowReturnOrphan, Date: ev.ReturnedDate.Format(rowDateLayout),
				Amount: money.String(ev.Amount), Count: 1,
			})
		case !ev.Repaid:
			out = append(out, FindingRow{
				Kind: RowNeverRepaid, Date: ev.ReturnedDate.Format(rowDateLayout),
				Amount: money.String(ev.Amount), Count: 1,
				Detail: fmt.Sprintf("canceled payment of %s", ev.CanceledPaymentDate.Format(rowDateLayout)),
			})
		}
	}

	for _, s := range r.SplitResults {
		out = append(out, FindingRow{
			Kind: RowSplit, Amount: money.String(s.Total), Count: 1,
			Detail: fmt.Sprintf("%s + %s", money.String(s.Parts[0]), money.String(s.Parts[1])),
		})
	}

	for _, u := range r.Unmatched {
		out = append(out, FindingRow{
			Kind: RowUnmatched, Amount: money.String(u.Amount), Count: u.Count,
		})
	}
	for _, u := range r.UnmatchedExtra {
		out = append(out, FindingRow{
			Kind: RowUnmatchedExt, Amount: money.String(u.Amount), Count: u.Count,
		})
	}
	return out
}

// WriteFindingsCSV exports the report's discrepancies in canonical CSV form.
func WriteFindingsCSV(w io.Writer, r *Report) error {
	rows := r.Rows()
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write findings CSV: %w", err)
	}
	return nil
}
