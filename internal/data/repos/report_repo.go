package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/bullscan/internal/contracts"
)

// ReportRepository persists ranked reports
// ⭐ SSOT: 스캔 결과 저장/조회는 여기서만
// contracts.Reporter (쓰기) 와 contracts.ReportStore (읽기) 를 모두 구현
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Report saves the report and its entries in one transaction
func (r *ReportRepository) Report(ctx context.Context, report *contracts.RankedReport) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	skipped := report.Skipped
	if skipped == nil {
		skipped = []contracts.SkippedSymbol{}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO scanner.scan_reports (run_id, as_of, generated_at, strategy_id, config_hash, skipped)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, report.RunID, report.AsOf, report.GeneratedAt, report.StrategyID, report.ConfigHash, skipped)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", report.RunID, err)
	}

	batch := &pgx.Batch{}
	for _, e := range report.Entries {
		batch.Queue(`
			INSERT INTO scanner.scan_entries (run_id, rank, symbol, score, price, regime, low_confidence, components)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, report.RunID, e.Rank, e.Symbol, e.Score, e.Price, e.Regime.String(), e.LowConfidence, e.Components)
	}

	results := tx.SendBatch(ctx, batch)
	for range report.Entries {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert entries %s: %w", report.RunID, err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const reportColumns = `run_id, as_of, generated_at, strategy_id, config_hash, skipped`

// Latest returns the most recently generated report
func (r *ReportRepository) Latest(ctx context.Context) (*contracts.RankedReport, error) {
	reports, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, contracts.ErrReportNotFound
	}
	return reports[0], nil
}

// List returns up to limit reports, newest first, with entries
func (r *ReportRepository) List(ctx context.Context, limit int) ([]*contracts.RankedReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+reportColumns+` FROM scanner.scan_reports ORDER BY generated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	var reports []*contracts.RankedReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		reports = append(reports, rep)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, rep := range reports {
		if err := r.loadEntries(ctx, rep); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// Get returns one report by run id
func (r *ReportRepository) Get(ctx context.Context, runID string) (*contracts.RankedReport, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM scanner.scan_reports WHERE run_id = $1`, runID)
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadEntries(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func scanReport(row pgx.Row) (*contracts.RankedReport, error) {
	var rep contracts.RankedReport
	if err := row.Scan(&rep.RunID, &rep.AsOf, &rep.GeneratedAt, &rep.StrategyID, &rep.ConfigHash, &rep.Skipped); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepository) loadEntries(ctx context.Context, rep *contracts.RankedReport) error {
	rows, err := r.pool.Query(ctx, `
		SELECT rank, symbol, score, price, regime, low_confidence, components
		FROM scanner.scan_entries
		WHERE run_id = $1
		ORDER BY rank ASC
	`, rep.RunID)
	if err != nil {
		return fmt.Errorf("query entries %s: %w", rep.RunID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e contracts.RankedEntry
		var regime string
		if err := rows.Scan(&e.Rank, &e.Symbol, &e.Score, &e.Price, &regime, &e.LowConfidence, &e.Components); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		if e.Regime, err = contracts.ParseRegime(regime); err != nil {
			return err
		}
		rep.Entries = append(rep.Entries, e)
	}
	return rows.Err()
}
