package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-recon/internal/domain/recon"
	"github.com/FACorreiaa/statement-recon/internal/domain/statement"
)

func TestSettledPayments(t *testing.T) {
	date := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	records := []statement.Record{
		{Date: date, Description: "CHECK 1041", Amount: decimal.RequireFromString("-250.00")},
	}

	payments := settledPayments(records)

	require.Len(t, payments, 1)
	assert.Equal(t, recon.StatusSettled, payments[0].Status)
	assert.Equal(t, date, payments[0].SettledAt)
	assert.Equal(t, date, payments[0].InitiatedAt)
	assert.Equal(t, "-250.00", payments[0].Amount.StringFixed(2))
}

func TestSettledPayments_SplitReachableFromParsedRecords(t *testing.T) {
	// A ledger total paid in two statement installments must come out of the
	// full reconciliation pass as a resolved split, not as two extras.
	lines := statement.NormalizeLines([]string{
		"Checks Paid",
		"3/10 INSTALLMENT A 70.00",
		"3/10 INSTALLMENT B 50.00",
	})
	records := statement.Parse(statement.BankStatementFormat(), lines, statement.SingleYear(2024), nil)
	require.Len(t, records, 2)

	reference := []recon.DatedAmount{{
		Date:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("-120.00"),
	}}

	report := recon.NewEngine(nil).Reconcile(reference, settledPayments(records))

	require.Len(t, report.SplitResults, 1)
	assert.Equal(t, "-120.00", report.SplitResults[0].Total.StringFixed(2))
	assert.Empty(t, report.Unmatched)
	assert.Empty(t, report.UnmatchedExtra)
}
