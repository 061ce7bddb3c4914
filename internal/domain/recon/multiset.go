// Package recon compares collections of dated, signed amounts from two
// sources and reports every discrepancy: per-date multiset mismatches,
// unresolved payment reversals, and split payments.
package recon

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Multiset is a count-aware set of amounts keyed by their 2-decimal rounded
// string form. Duplicate equal amounts are tracked individually; that is the
// point, boolean set membership would collapse same-day duplicates.
type Multiset struct {
	counts  map[string]int
	amounts map[string]decimal.Decimal
}

// AmountCount is one amount together with its occurrence count.
type AmountCount struct {
	Amount decimal.Decimal
	Count  int
}

// NewMultiset returns an empty multiset.
func NewMultiset() *Multiset {
	return &Multiset{
		counts:  make(map[string]int),
		amounts: make(map[string]decimal.Decimal),
	}
}

// MultisetOf builds a multiset from a list of amounts.
func MultisetOf(amounts []decimal.Decimal) *Multiset {
	m := NewMultiset()
	for _, a := range amounts {
		m.Add(a)
	}
	return m
}

func key(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// Add inserts one occurrence of the amount.
func (m *Multiset) Add(d decimal.Decimal) {
	m.AddN(d, 1)
}

// AddN inserts n occurrences of the amount.
func (m *Multiset) AddN(d decimal.Decimal, n int) {
	if n <= 0 {
		return
	}
	k := key(d)
	m.counts[k] += n
	m.amounts[k] = d.Round(2)
}

// Count returns the occurrence count for the amount.
func (m *Multiset) Count(d decimal.Decimal) int {
	return m.counts[key(d)]
}

// Len returns the total number of occurrences across all amounts.
func (m *Multiset) Len() int {
	total := 0
	for _, n := range m.counts {
		total += n
	}
	return total
}

// Sum returns the sum over all occurrences.
func (m *Multiset) Sum() decimal.Decimal {
	sum := decimal.Zero
	for k, n := range m.counts {
		sum = sum.Add(m.amounts[k].Mul(decimal.NewFromInt(int64(n))))
	}
	return sum
}

// TryConsume atomically removes n occurrences of the amount. It removes
// nothing and returns false when fewer than n are present, so callers can
// attempt-and-rollback without partial state.
func (m *Multiset) TryConsume(d decimal.Decimal, n int) bool {
	if n <= 0 {
		return true
	}
	k := key(d)
	if m.counts[k] < n {
		return false
	}
	m.counts[k] -= n
	if m.counts[k] == 0 {
		delete(m.counts, k)
		delete(m.amounts, k)
	}
	return true
}

// Release returns n occurrences of the amount, undoing a prior TryConsume.
func (m *Multiset) Release(d decimal.Decimal, n int) {
	m.AddN(d, n)
}

// Equal reports whether both multisets hold the same amounts with the same
// counts.
func (m *Multiset) Equal(other *Multiset) bool {
	if len(m.counts) != len(other.counts) {
		return false
	}
	for k, n := range m.counts {
		if other.counts[k] != n {
			return false
		}
	}
	return true
}

// Subtract returns the count-wise difference m minus other, clipped at zero:
// the occurrences present in m in excess of other.
func (m *Multiset) Subtract(other *Multiset) []AmountCount {
	var out []AmountCount
	for k, n := range m.counts {
		if excess := n - other.counts[k]; excess > 0 {
			out = append(out, AmountCount{Amount: m.amounts[k], Count: excess})
		}
	}
	sortAmountCounts(out)
	return out
}

// Items returns every amount with its count, sorted ascending by amount.
func (m *Multiset) Items() []AmountCount {
	out := make([]AmountCount, 0, len(m.counts))
	for k, n := range m.counts {
		out = append(out, AmountCount{Amount: m.amounts[k], Count: n})
	}
	sortAmountCounts(out)
	return out
}

// Clone returns an independent copy.
func (m *Multiset) Clone() *Multiset {
	c := NewMultiset()
	for k, n := range m.counts {
		c.counts[k] = n
		c.amounts[k] = m.amounts[k]
	}
	return c
}

func sortAmountCounts(items []AmountCount) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Amount.LessThan(items[j].Amount)
	})
}
