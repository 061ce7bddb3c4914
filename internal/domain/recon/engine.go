package recon

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-recon/pkg/money"
)

// DatedAmount is the unit of reconciliation: a signed amount on a calendar
// day. Amounts are compared by their 2-decimal rounded value.
type DatedAmount struct {
	Date   time.Time
	Amount decimal.Decimal
}

// DateFinding reports one date where the two sides disagree. Missing holds
// reference-side excess (amounts the candidate lacks), Extra the
// candidate-side excess.
type DateFinding struct {
	Date    time.Time
	Missing []AmountCount
	Extra   []AmountCount
}

// Report is the outcome of one reconciliation run.
type Report struct {
	RunID uuid.UUID

	MatchedDates   int
	Findings       []DateFinding
	ReferenceSum   decimal.Decimal
	CandidateSum   decimal.Decimal
	SumsMatch      bool
	ReturnEvents   []ReturnEvent
	SplitResults   []SplitResolution
	Unmatched      []AmountCount // leftover reference excess after split resolution
	UnmatchedExtra []AmountCount // leftover candidate excess after split resolution
}

// Clean reports whether the run found no discrepancies of any kind.
func (r *Report) Clean() bool {
	if len(r.Findings) > 0 || !r.SumsMatch || len(r.Unmatched) > 0 || len(r.UnmatchedExtra) > 0 {
		return false
	}
	for _, e := range r.ReturnEvents {
		if !e.Resolved || !e.Repaid {
			return false
		}
	}
	return true
}

// Engine groups each side by date, compares per-date amount multisets, and
// reports every mismatch. It is not incremental: rerun it whenever either
// input changes.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Compare reconciles the candidate side against the reference side per
// calendar date. Duplicate same-day same-amount entries are each accounted
// for individually via multiset difference.
func (e *Engine) Compare(reference, candidate []DatedAmount) *Report {
	report := &Report{RunID: uuid.New()}

	refByDate := groupByDate(reference)
	candByDate := groupByDate(candidate)

	for _, day := range unionDates(refByDate, candByDate) {
		ref := refByDate[day]
		cand := candByDate[day]
		if ref == nil {
			ref = NewMultiset()
		}
		if cand == nil {
			cand = NewMultiset()
		}

		if ref.Equal(cand) {
			report.MatchedDates++
			continue
		}
		report.Findings = append(report.Findings, DateFinding{
			Date:    day,
			Missing: ref.Subtract(cand),
			Extra:   cand.Subtract(ref),
		})
	}

	report.ReferenceSum = sumAmounts(reference)
	report.CandidateSum = sumAmounts(candidate)
	report.SumsMatch = report.ReferenceSum.Equal(report.CandidateSum)

	e.logger.Debug("per-date comparison complete",
		slog.Int("matched_dates", report.MatchedDates),
		slog.Int("mismatched_dates", len(report.Findings)))
	return report
}

// Reconcile is the full pass: resolve reversals on the candidate side first,
// compare the effective candidate set per date, and when the per-date
// comparison leaves discrepancies, attempt split-payment resolution on the
// remaining amounts.
func (e *Engine) Reconcile(reference []DatedAmount, candidate []Payment) *Report {
	resolution := ResolveReturns(candidate, e.logger)

	effective := make([]DatedAmount, 0, len(resolution.Effective))
	for _, p := range resolution.Effective {
		effective = append(effective, DatedAmount{Date: day(p.SettledAt), Amount: p.Amount})
	}

	report := e.Compare(reference, effective)
	report.ReturnEvents = resolution.Events

	if len(report.Findings) > 0 {
		refLeft := NewMultiset()
		candLeft := NewMultiset()
		for _, f := range report.Findings {
			for _, mc := range f.Missing {
				refLeft.AddN(mc.Amount, mc.Count)
			}
			for _, xc := range f.Extra {
				candLeft.AddN(xc.Amount, xc.Count)
			}
		}
		split := ResolveSplits(refLeft, candLeft)
		report.SplitResults = split.Resolutions
		report.Unmatched = split.UnmatchedReference
		report.UnmatchedExtra = split.UnmatchedCandidate
	}

	return report
}

// Render writes a human-readable summary of the report.
func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "reconciliation %s\n", r.RunID)
	fmt.Fprintf(&b, "  matched dates: %d, mismatched dates: %d\n", r.MatchedDates, len(r.Findings))
	fmt.Fprintf(&b, "  reference sum %s vs candidate sum %s",
		money.DisplayUSD(r.ReferenceSum), money.DisplayUSD(r.CandidateSum))
	if r.SumsMatch {
		b.WriteString(" (match)\n")
	} else {
		b.WriteString(" (MISMATCH)\n")
	}

	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  %s:\n", f.Date.Format("2006-01-02"))
		for _, mc := range f.Missing {
			fmt.Fprintf(&b, "    missing %s x%d\n", money.DisplayUSD(mc.Amount), mc.Count)
		}
		for _, xc := range f.Extra {
			fmt.Fprintf(&b, "    extra   %s x%d\n", money.DisplayUSD(xc.Amount), xc.Count)
		}
	}

	for _, ev := range r.ReturnEvents {
		switch {
		case !ev.Resolved:
			fmt.Fprintf(&b, "  return %s on %s: NOT_FOUND\n",
				money.DisplayUSD(ev.Amount), ev.ReturnedDate.Format("2006-01-02"))
		case !ev.Repaid:
			fmt.Fprintf(&b, "  return %s on %s canceled payment of %s: never repaid\n",
				money.DisplayUSD(ev.Amount), ev.ReturnedDate.Format("2006-01-02"),
				ev.CanceledPaymentDate.Format("2006-01-02"))
		}
	}

	for _, s := range r.SplitResults {
		fmt.Fprintf(&b, "  split: %s = %s + %s\n",
			money.DisplayUSD(s.Total), money.DisplayUSD(s.Parts[0]), money.DisplayUSD(s.Parts[1]))
	}
	for _, u := range r.Unmatched {
		fmt.Fprintf(&b, "  unmatched reference %s x%d\n", money.DisplayUSD(u.Amount), u.Count)
	}
	for _, u := range r.UnmatchedExtra {
		fmt.Fprintf(&b, "  unmatched candidate %s x%d\n", money.DisplayUSD(u.Amount), u.Count)
	}
	return b.String()
}

func groupByDate(items []DatedAmount) map[time.Time]*Multiset {
	out := make(map[time.Time]*Multiset)
	for _, item := range items {
		d := day(item.Date)
		if out[d] == nil {
			out[d] = NewMultiset()
		}
		out[d].Add(item.Amount)
	}
	return out
}

func unionDates(a, b map[time.Time]*Multiset) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for d := range a {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	for d := range b {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func sumAmounts(items []DatedAmount) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount.Round(2))
	}
	return sum.Round(2)
}

func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
