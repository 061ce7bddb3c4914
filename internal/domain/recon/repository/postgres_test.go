package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-recon/internal/domain/recon"
)

func testReport(t *testing.T) *recon.Report {
	t.Helper()
	engine := recon.NewEngine(nil)
	return engine.Compare(
		[]recon.DatedAmount{{
			Date:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("10.00"),
		}},
		[]recon.DatedAmount{{
			Date:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("12.00"),
		}},
	)
}

func TestRepository_SaveReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	report := testReport(t)
	repo := New(mock)

	mock.ExpectExec("INSERT INTO recon_runs").
		WithArgs(report.RunID, "ledger.xlsx", "statement.txt", 0, 1, "10.00", "12.00", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// one missing row and one extra row for the single mismatched date
	mock.ExpectExec("INSERT INTO recon_findings").
		WithArgs(report.RunID, FindingMissing, pgxmock.AnyArg(), "10.00", 1, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO recon_findings").
		WithArgs(report.RunID, FindingExtra, pgxmock.AnyArg(), "12.00", 1, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.SaveReport(context.Background(), report, "ledger.xlsx", "statement.txt")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveReport_RunInsertFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	report := testReport(t)
	repo := New(mock)

	mock.ExpectExec("INSERT INTO recon_runs").
		WithArgs(report.RunID, "a", "b", 0, 1, "10.00", "12.00", false).
		WillReturnError(assert.AnError)

	err = repo.SaveReport(context.Background(), report, "a", "b")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to save run")
}

func TestRepository_GetRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(mock)
	id := uuid.New()
	created := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM recon_runs").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "reference_source", "candidate_source", "matched_dates",
			"mismatched_dates", "reference_sum", "candidate_sum", "clean", "created_at",
		}).AddRow(id, "ledger.xlsx", "statement.txt", 12, 1, "4102.33", "4090.33", false, created))

	run, err := repo.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, 12, run.MatchedDates)
	assert.Equal(t, 1, run.MismatchedDates)
	assert.False(t, run.Clean)
	assert.Equal(t, created, run.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetFindings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := New(mock)
	runID := uuid.New()
	found := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM recon_findings").
		WithArgs(runID).
		WillReturnRows(pgxmock.NewRows([]string{
			"run_id", "kind", "found_on", "amount", "occurrences", "detail",
		}).
			AddRow(runID, FindingMissing, found, "10.00", 1, "").
			AddRow(runID, FindingSplit, time.Time{}, "120.00", 1, "70.00 + 50.00"))

	findings, err := repo.GetFindings(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, FindingMissing, findings[0].Kind)
	assert.Equal(t, "10.00", findings[0].Amount)
	assert.Equal(t, "70.00 + 50.00", findings[1].Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}
