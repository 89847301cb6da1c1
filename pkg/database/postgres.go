package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wonny/bullscan/pkg/config"
)

// DB wraps the pgxpool.Pool
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a connection pool and verifies it with a ping
// ⭐ SSOT: 유일하게 pgxpool.NewWithConfig()를 호출하는 함수
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	if !cfg.Database.Enabled() {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// schema is applied idempotently on startup.
// daily_bars: 일봉 캐시, scan_reports/scan_entries: 스캔 결과 (RankedReport)
var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS scanner`,
	`CREATE TABLE IF NOT EXISTS scanner.daily_bars (
		symbol     TEXT NOT NULL,
		trade_date DATE NOT NULL,
		open       DOUBLE PRECISION NOT NULL,
		high       DOUBLE PRECISION NOT NULL,
		low        DOUBLE PRECISION NOT NULL,
		close      DOUBLE PRECISION NOT NULL,
		volume     BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (symbol, trade_date)
	)`,
	`CREATE TABLE IF NOT EXISTS scanner.scan_reports (
		run_id       TEXT PRIMARY KEY,
		as_of        DATE NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		strategy_id  TEXT NOT NULL,
		config_hash  TEXT NOT NULL,
		skipped      JSONB NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scan_reports_generated ON scanner.scan_reports (generated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS scanner.scan_entries (
		run_id         TEXT NOT NULL REFERENCES scanner.scan_reports(run_id) ON DELETE CASCADE,
		rank           INT NOT NULL,
		symbol         TEXT NOT NULL,
		score          DOUBLE PRECISION NOT NULL,
		price          DOUBLE PRECISION NOT NULL,
		regime         TEXT NOT NULL,
		low_confidence BOOLEAN NOT NULL DEFAULT FALSE,
		components     JSONB NOT NULL DEFAULT '{}',
		PRIMARY KEY (run_id, rank)
	)`,
}

// Migrate creates the scanner schema if it does not exist
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}
	return nil
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Timestamp     time.Time     `json:"timestamp"`
	ResponseTime  time.Duration `json:"response_time"`
	Error         string        `json:"error,omitempty"`
	AcquiredConns int32         `json:"acquired_conns"`
	IdleConns     int32         `json:"idle_conns"`
	TotalConns    int32         `json:"total_conns"`
	MaxConns      int32         `json:"max_conns"`
}

// HealthCheck pings and reports pool usage
func (db *DB) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{Timestamp: time.Now()}

	start := time.Now()
	if err := db.Pool.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)

	stats := db.Pool.Stat()
	status.AcquiredConns = stats.AcquiredConns()
	status.IdleConns = stats.IdleConns()
	status.TotalConns = stats.TotalConns()
	status.MaxConns = stats.MaxConns()
	status.Healthy = true

	return status, nil
}
