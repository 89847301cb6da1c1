package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/bullscan/internal/contracts"
)

// PriceRepository stores daily bars in scanner.daily_bars
// ⭐ SSOT: 일봉 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// Fetch implements contracts.SeriesSource over stored bars
func (r *PriceRepository) Fetch(ctx context.Context, symbol string, from, to time.Time) (*contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, open, high, low, close, volume
		FROM scanner.daily_bars
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query bars %s: %w", symbol, err)
	}
	defer rows.Close()

	series := &contracts.PriceSeries{Symbol: symbol}
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar %s: %w", symbol, err)
		}
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if series.Len() == 0 {
		return nil, fmt.Errorf("no stored bars for %s between %s and %s",
			symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return series, nil
}

// LatestDate returns the most recent stored trade date for symbol
func (r *PriceRepository) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	var d time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT trade_date FROM scanner.daily_bars WHERE symbol = $1 ORDER BY trade_date DESC LIMIT 1`,
		symbol,
	).Scan(&d)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return d, true, nil
}

// SaveSeries upserts every bar of series in one batch
func (r *PriceRepository) SaveSeries(ctx context.Context, series *contracts.PriceSeries) error {
	if series.Len() == 0 {
		return nil
	}

	query := `
		INSERT INTO scanner.daily_bars (symbol, trade_date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, b := range series.Bars {
		batch.Queue(query, series.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < series.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert %s bar %d: %w", series.Symbol, i, err)
		}
	}
	return nil
}

// CountBars returns the number of stored bars per symbol
func (r *PriceRepository) CountBars(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT symbol, COUNT(*) FROM scanner.daily_bars GROUP BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sym string
		var n int
		if err := rows.Scan(&sym, &n); err != nil {
			return nil, err
		}
		counts[sym] = n
	}
	return counts, rows.Err()
}
