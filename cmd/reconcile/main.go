// Command reconcile parses a statement text rendering into transaction
// records and reconciles them against a ledger, reporting every discrepancy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-recon/internal/domain/ledger"
	"github.com/FACorreiaa/statement-recon/internal/domain/recon"
	reconrepo "github.com/FACorreiaa/statement-recon/internal/domain/recon/repository"
	"github.com/FACorreiaa/statement-recon/internal/domain/statement"
	"github.com/FACorreiaa/statement-recon/internal/domain/vendor"
	"github.com/FACorreiaa/statement-recon/pkg/config"
	"github.com/FACorreiaa/statement-recon/pkg/db"
)

func main() {
	statementPath := flag.String("statement", "", "path to the statement text rendering (required)")
	ledgerPath := flag.String("ledger", "", "path to the ledger to reconcile against (.xlsx or .csv)")
	vendorPath := flag.String("vendors", "", "path to a vendor reference spreadsheet (.xlsx)")
	formatName := flag.String("format", "", "force a statement format instead of auto-detecting")
	outPath := flag.String("out", "", "write parsed records as canonical CSV to this path")
	findingsPath := flag.String("findings", "", "write report findings as canonical CSV to this path")
	threshold := flag.Int("threshold", -1, "vendor match acceptance threshold 0-100 (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *threshold >= 0 && *threshold <= 100 {
		cfg.Vendor.AcceptThreshold = *threshold
	}

	logger := newLogger(cfg.Logging.Level)

	if *statementPath == "" {
		fmt.Fprintln(os.Stderr, "usage: reconcile -statement FILE [-ledger FILE] [-vendors FILE]")
		os.Exit(2)
	}

	if err := run(cfg, logger, *statementPath, *ledgerPath, *vendorPath, *formatName, *outPath, *findingsPath); err != nil {
		logger.Error("reconcile failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, statementPath, ledgerPath, vendorPath, formatName, outPath, findingsPath string) error {
	f, err := os.Open(statementPath)
	if err != nil {
		return fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	lines, err := statement.ReadLines(f)
	if err != nil {
		return fmt.Errorf("read statement: %w", err)
	}

	registry := statement.NewRegistry()
	var format *statement.FormatDescriptor
	if formatName != "" {
		var ok bool
		format, ok = registry.Lookup(formatName)
		if !ok {
			return fmt.Errorf("unknown format %q", formatName)
		}
	} else {
		format, err = registry.Detect(lines, cfg.Parse.HeaderScanLines)
		if err != nil {
			return fmt.Errorf("detect format: %w", err)
		}
	}
	logger.Info("statement format", slog.String("format", format.Name))

	period, err := statement.ResolvePeriod(lines, cfg.Parse.HeaderScanLines)
	if errors.Is(err, statement.ErrNoPeriod) {
		year := cfg.Parse.DefaultYear
		if year == 0 {
			year = time.Now().UTC().Year()
		}
		period = statement.SingleYear(year)
		logger.Warn("no statement period found, using default year", slog.Int("year", year))
	} else if err != nil {
		return fmt.Errorf("resolve period: %w", err)
	}

	if format.Grouped {
		return runGrouped(logger, format, lines)
	}

	records := statement.Parse(format, lines, period, logger)
	logger.Info("parsed statement", slog.Int("records", len(records)))

	if vendorPath != "" {
		if err := applyVendors(cfg, logger, vendorPath, records); err != nil {
			return err
		}
	}

	if outPath != "" {
		if err := writeRecords(outPath, records); err != nil {
			return err
		}
	}

	if ledgerPath == "" {
		for _, r := range records {
			fmt.Printf("%s  %10s  %s\n", r.Date.Format("2006-01-02"), r.Amount.StringFixed(2), r.Description)
		}
		return nil
	}

	entries, err := loadLedger(ledgerPath)
	if err != nil {
		return err
	}
	logger.Info("loaded ledger", slog.Int("entries", len(entries)))

	reference := make([]recon.DatedAmount, len(entries))
	for i, e := range entries {
		reference[i] = recon.DatedAmount{Date: e.Date, Amount: e.Amount}
	}
	engine := recon.NewEngine(logger)
	report := engine.Reconcile(reference, settledPayments(records))
	fmt.Print(report.Render())

	if findingsPath != "" {
		if err := writeFindings(findingsPath, report); err != nil {
			return err
		}
	}

	if cfg.Recon.PersistRuns {
		if err := persistReport(cfg, logger, report, ledgerPath, statementPath); err != nil {
			return err
		}
	}
	return nil
}

// settledPayments maps parsed statement records into the candidate side of
// the full reconciliation pass. Statement records carry no settlement status,
// so each one enters as settled; the returns and split layers still run on
// whatever the per-date comparison leaves over.
func settledPayments(records []statement.Record) []recon.Payment {
	payments := make([]recon.Payment, len(records))
	for i, r := range records {
		payments[i] = recon.Payment{
			Status:      recon.StatusSettled,
			Amount:      r.Amount,
			SettledAt:   r.Date,
			InitiatedAt: r.Date,
		}
	}
	return payments
}

func runGrouped(logger *slog.Logger, format *statement.FormatDescriptor, lines []statement.RawLine) error {
	tags := statement.NewClassifier(format).ClassifyAll(lines)
	buckets := statement.NewGroupedAssembler(format, logger).Assemble(tags)
	for _, b := range buckets {
		fmt.Printf("%s", b.Key.Entity)
		if b.Key.Section != "" {
			fmt.Printf(" [%s]", b.Key.Section)
		}
		fmt.Println()
		slots := make([]string, 0, len(b.Slots))
		for slot := range b.Slots {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			fmt.Printf("  %-10s %s\n", slot, b.Slots[slot].String())
		}
	}
	return nil
}

func applyVendors(cfg *config.Config, logger *slog.Logger, vendorPath string, records []statement.Record) error {
	vf, err := os.Open(vendorPath)
	if err != nil {
		return fmt.Errorf("open vendors: %w", err)
	}
	defer vf.Close()

	matcher, err := vendor.NewMatcherFromWorkbook(vf, cfg.Vendor.SheetColumn)
	if err != nil {
		return err
	}
	logger.Info("loaded vendor reference set", slog.Int("vendors", matcher.Size()))

	for i := range records {
		m := matcher.Match(records[i].Description)
		if m.Confidence >= cfg.Vendor.AcceptThreshold && m.Key != "" {
			records[i].Description = m.Key
		}
	}
	return nil
}

func loadLedger(path string) ([]ledger.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ledger.LoadWorkbook(f)
	case ".csv":
		return ledger.ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported ledger format %q", filepath.Ext(path))
	}
}

func writeRecords(path string, records []statement.Record) error {
	entries := make([]ledger.Entry, len(records))
	for i, r := range records {
		entries[i] = ledger.Entry{
			Date:        r.Date,
			Description: r.Description,
			Amount:      r.Amount,
			Reference:   r.Reference,
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	return ledger.WriteCSV(out, entries)
}

func writeFindings(path string, report *recon.Report) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create findings output: %w", err)
	}
	defer out.Close()
	return recon.WriteFindingsCSV(out, report)
}

func persistReport(cfg *config.Config, logger *slog.Logger, report *recon.Report, referenceSource, candidateSource string) error {
	ctx := context.Background()
	database, err := db.New(db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := reconrepo.New(database.Pool)
	if err := repo.SaveReport(ctx, report, referenceSource, candidateSource); err != nil {
		return err
	}
	logger.Info("persisted reconciliation run", slog.String("run_id", report.RunID.String()))
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
