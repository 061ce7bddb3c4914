// Package repository persists reconciliation runs and their findings.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/statement-recon/internal/domain/recon"
	"github.com/FACorreiaa/statement-recon/pkg/money"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Run is a stored reconciliation run.
type Run struct {
	ID              uuid.UUID
	ReferenceSource string
	CandidateSource string
	MatchedDates    int
	MismatchedDates int
	ReferenceSum    string
	CandidateSum    string
	Clean           bool
	CreatedAt       time.Time
}

// Finding kinds stored per run.
const (
	FindingMissing      = "missing"
	FindingExtra        = "extra"
	FindingReturnOrphan = "return_not_found"
	FindingNeverRepaid  = "return_never_repaid"
	FindingSplit        = "split_resolved"
	FindingUnmatched    = "unmatched"
)

// Finding is one stored discrepancy row.
type Finding struct {
	RunID  uuid.UUID
	Kind   string
	Date   time.Time
	Amount string
	Count  int
	Detail string
}

// Repository stores reconciliation results in Postgres.
type Repository struct {
	db DB
}

// New creates a repository over a pgx pool (or a mock in tests).
func New(db DB) *Repository {
	return &Repository{db: db}
}

// SaveReport stores the run header and every finding of a report in one pass.
func (r *Repository) SaveReport(ctx context.Context, report *recon.Report, referenceSource, candidateSource string) error {
	query := `
		INSERT INTO recon_runs (
			id, reference_source, candidate_source, matched_dates,
			mismatched_dates, reference_sum, candidate_sum, clean
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		report.RunID,
		referenceSource,
		candidateSource,
		report.MatchedDates,
		len(report.Findings),
		money.String(report.ReferenceSum),
		money.String(report.CandidateSum),
		report.Clean(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for _, f := range collectFindings(report) {
		if err := r.saveFinding(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) saveFinding(ctx context.Context, f Finding) error {
	query := `
		INSERT INTO recon_findings (run_id, kind, found_on, amount, occurrences, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, f.RunID, f.Kind, f.Date, f.Amount, f.Count, f.Detail)
	if err != nil {
		return fmt.Errorf("failed to save %s finding: %w", f.Kind, err)
	}
	return nil
}

// GetRun loads a stored run header.
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, reference_source, candidate_source, matched_dates,
			mismatched_dates, reference_sum, candidate_sum, clean, created_at
		FROM recon_runs
		WHERE id = $1
	`
	var run Run
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.ReferenceSource, &run.CandidateSource, &run.MatchedDates,
		&run.MismatchedDates, &run.ReferenceSum, &run.CandidateSum, &run.Clean,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &run, nil
}

// GetFindings loads a run's findings in insertion order.
func (r *Repository) GetFindings(ctx context.Context, runID uuid.UUID) ([]Finding, error) {
	query := `
		SELECT run_id, kind, found_on, amount, occurrences, detail
		FROM recon_findings
		WHERE run_id = $1
		ORDER BY found_on, kind, amount
	`
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings for %s: %w", runID, err)
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.RunID, &f.Kind, &f.Date, &f.Amount, &f.Count, &f.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// collectFindings flattens every report discrepancy into storable rows.
func collectFindings(report *recon.Report) []Finding {
	var out []Finding

	for _, df := range report.Findings {
		for _, mc := range df.Missing {
			out = append(out, Finding{
				RunID: report.RunID, Kind: FindingMissing, Date: df.Date,
				Amount: money.String(mc.Amount), Count: mc.Count,
			})
		}
		for _, xc := range df.Extra {
			out = append(out, Finding{
				RunID: report.RunID, Kind: FindingExtra, Date: df.Date,
				Amount: money.String(xc.Amount), Count: xc.Count,
			})
		}
	}

	for _, ev := range report.ReturnEvents {
		switch {
		case !ev.Resolved:
			out = append(out, Finding{
				RunID: report.RunID, Kind: FindingReturnOrphan, Date: ev.ReturnedDate,
				Amount: money.String(ev.Amount), Count: 1,
			})
		case !ev.Repaid:
			out = append(out, Finding{
				RunID: report.RunID, Kind: FindingNeverRepaid, Date: ev.ReturnedDate,
				Amount: money.String(ev.Amount), Count: 1,
				Detail: fmt.Sprintf("canceled payment of %s", ev.CanceledPaymentDate.Format("2006-01-02")),
			})
		}
	}

	for _, s := range report.SplitResults {
		out = append(out, Finding{
			RunID: report.RunID, Kind: FindingSplit,
			Amount: money.String(s.Total), Count: 1,
			Detail: fmt.Sprintf("%s + %s", money.String(s.Parts[0]), money.String(s.Parts[1])),
		})
	}

	for _, u := range report.Unmatched {
		out = append(out, Finding{
			RunID: report.RunID, Kind: FindingUnmatched,
			Amount: money.String(u.Amount), Count: u.Count, Detail: "reference",
		})
	}
	for _, u := range report.UnmatchedExtra {
		out = append(out, Finding{
			RunID: report.RunID, Kind: FindingUnmatched,
			Amount: money.String(u.Amount), Count: u.Count, Detail: "candidate",
		})
	}

	return out
}
