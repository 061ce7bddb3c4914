package recon

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus partitions candidate records for the returns pass. Settled
// and scheduled payments both count as successful; returned marks a reversal.
type PaymentStatus string

const (
	StatusSettled   PaymentStatus = "settled"
	StatusScheduled PaymentStatus = "scheduled"
	StatusReturned  PaymentStatus = "returned"
)

// Payment is one candidate-side record with its settlement and initiation
// dates. InitiatedAt is the secondary sort key; a zero value is tolerated.
type Payment struct {
	Status      PaymentStatus
	Amount      decimal.Decimal
	SettledAt   time.Time
	InitiatedAt time.Time
}

// Successful reports whether the payment counts toward the effective set.
func (p Payment) Successful() bool {
	return p.Status == StatusSettled || p.Status == StatusScheduled
}

// ReturnEvent records the outcome of matching one reversal against a prior
// successful payment of equal amount.
type ReturnEvent struct {
	ReturnedDate        time.Time
	Amount              decimal.Decimal
	CanceledPaymentDate time.Time
	Resolved            bool // an eligible prior payment was found and canceled
	Repaid              bool // a later successful payment of equal amount exists
}

// ReturnResolution is the result of the returns pass: the effective
// successful-payment set (with canceled payments removed) and one event per
// reversal.
type ReturnResolution struct {
	Effective []Payment
	Events    []ReturnEvent
}

// indexedPayment tracks a payment's original sequence position and
// cancellation state during the returns pass.
type indexedPayment struct {
	Payment
	pos      int
	canceled bool
}

// ResolveReturns cancels each reversal against a prior successful payment of
// equal amount settled on or before the reversal date. Among eligible
// candidates it picks the one with the latest settlement date, breaking ties
// by latest initiation date and then by latest original position: reversals
// apply to the most proximate prior attempt, not the oldest. A reversal with
// no eligible candidate is reported unresolved; that is a finding, not an
// error. Every resolved reversal is additionally checked for a later
// successful payment of equal amount ("repaid"); its absence is a distinct
// diagnostic.
func ResolveReturns(payments []Payment, logger *slog.Logger) ReturnResolution {
	if logger == nil {
		logger = slog.Default()
	}

	var successful []*indexedPayment
	var reversals []*indexedPayment
	for i, p := range payments {
		ip := &indexedPayment{Payment: p, pos: i}
		switch {
		case p.Successful():
			successful = append(successful, ip)
		case p.Status == StatusReturned:
			reversals = append(reversals, ip)
		}
	}

	chronological := func(items []*indexedPayment) {
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].SettledAt.Equal(items[j].SettledAt) {
				return items[i].SettledAt.Before(items[j].SettledAt)
			}
			return items[i].InitiatedAt.Before(items[j].InitiatedAt)
		})
	}
	chronological(successful)
	chronological(reversals)

	var events []ReturnEvent
	for _, rev := range reversals {
		event := ReturnEvent{
			ReturnedDate: day(rev.SettledAt),
			Amount:       rev.Amount.Round(2),
		}

		// Latest eligible prior payment: settled on or before the reversal
		// day, equal amount, not already canceled. Both sides compare at day
		// granularity, the same unit the engine reconciles on.
		var chosen *indexedPayment
		for _, cand := range successful {
			if cand.canceled {
				continue
			}
			if day(cand.SettledAt).After(event.ReturnedDate) {
				continue
			}
			if !cand.Amount.Round(2).Equal(event.Amount) {
				continue
			}
			if chosen == nil || laterCandidate(cand, chosen) {
				chosen = cand
			}
		}

		if chosen == nil {
			logger.Warn("reversal matches no prior payment",
				slog.String("amount", event.Amount.StringFixed(2)),
				slog.String("returned", event.ReturnedDate.Format("2006-01-02")))
			events = append(events, event)
			continue
		}

		chosen.canceled = true
		event.Resolved = true
		event.CanceledPaymentDate = day(chosen.SettledAt)
		events = append(events, event)
	}

	// Repayment check runs against the final effective set, after all
	// cancellations.
	for i := range events {
		if !events[i].Resolved {
			continue
		}
		for _, cand := range successful {
			if cand.canceled {
				continue
			}
			if day(cand.SettledAt).After(events[i].ReturnedDate) && cand.Amount.Round(2).Equal(events[i].Amount) {
				events[i].Repaid = true
				break
			}
		}
		if !events[i].Repaid {
			logger.Warn("reversal never repaid",
				slog.String("amount", events[i].Amount.StringFixed(2)),
				slog.String("returned", events[i].ReturnedDate.Format("2006-01-02")))
		}
	}

	var effective []Payment
	for _, cand := range successful {
		if !cand.canceled {
			effective = append(effective, cand.Payment)
		}
	}
	return ReturnResolution{Effective: effective, Events: events}
}

// laterCandidate reports whether a should replace b as the cancellation
// target: later settlement date, then later initiation date, then later
// original sequence position.
func laterCandidate(a, b *indexedPayment) bool {
	if !a.SettledAt.Equal(b.SettledAt) {
		return a.SettledAt.After(b.SettledAt)
	}
	if !a.InitiatedAt.Equal(b.InitiatedAt) {
		return a.InitiatedAt.After(b.InitiatedAt)
	}
	return a.pos > b.pos
}
