package recon

import (
	"github.com/shopspring/decimal"
)

// SplitResolution records one reference total satisfied by two candidate
// amounts that sum to it: a fee remitted as two separate sub-payments.
type SplitResolution struct {
	Total decimal.Decimal
	Parts [2]decimal.Decimal
}

// SplitResult is the outcome of split-payment resolution.
type SplitResult struct {
	Resolutions        []SplitResolution
	UnmatchedReference []AmountCount // reference occurrences nothing could satisfy
	UnmatchedCandidate []AmountCount // candidate occurrences nothing consumed
}

// ResolveSplits reconciles two amount multisets in two ordered passes.
//
// Pass one consumes direct matches: one reference occurrence against one
// equal candidate occurrence, exhaustively. Pass two then tries, for each
// remaining reference occurrence, to find two candidate amounts summing to
// it, consuming both only when the pair is found (TryConsume/Release keeps
// the backtracking atomic). The ordering matters: running splits first could
// steal candidate amounts that direct matches elsewhere need.
//
// Both inputs are consumed; pass copies if the originals must survive.
func ResolveSplits(reference, candidate *Multiset) SplitResult {
	var result SplitResult

	// Pass one: direct one-for-one consumption.
	for _, item := range reference.Items() {
		for i := 0; i < item.Count; i++ {
			if candidate.TryConsume(item.Amount, 1) {
				reference.TryConsume(item.Amount, 1)
			}
		}
	}

	// Pass two: pair each remaining reference total with two candidate
	// amounts that sum to it.
	for _, item := range reference.Items() {
		for i := 0; i < item.Count; i++ {
			parts, ok := findPair(candidate, item.Amount)
			if !ok {
				break // no pair for this amount; further copies fare no better
			}
			reference.TryConsume(item.Amount, 1)
			result.Resolutions = append(result.Resolutions, SplitResolution{
				Total: item.Amount,
				Parts: parts,
			})
		}
	}

	result.UnmatchedReference = reference.Items()
	result.UnmatchedCandidate = candidate.Items()
	return result
}

// findPair locates two candidate amounts summing to total and consumes both.
// On failure the candidate multiset is left untouched.
func findPair(candidate *Multiset, total decimal.Decimal) ([2]decimal.Decimal, bool) {
	for _, first := range candidate.Items() {
		if !candidate.TryConsume(first.Amount, 1) {
			continue
		}
		rest := total.Sub(first.Amount).Round(2)
		if candidate.TryConsume(rest, 1) {
			return [2]decimal.Decimal{first.Amount, rest}, true
		}
		candidate.Release(first.Amount, 1)
	}
	return [2]decimal.Decimal{}, false
}
