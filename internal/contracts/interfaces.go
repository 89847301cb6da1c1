package contracts

import (
	"context"
	"time"
)

// SeriesSource supplies fully materialized daily history
// ⭐ SSOT: 시세 조회 인터페이스 (Yahoo, PostgreSQL, Redis 캐시, 메모리)
type SeriesSource interface {
	Fetch(ctx context.Context, symbol string, from, to time.Time) (*PriceSeries, error)
}

// Reporter receives a completed cycle's report
// ⭐ SSOT: 결과 출력 인터페이스 (콘솔, CSV, DB)
type Reporter interface {
	Report(ctx context.Context, report *RankedReport) error
}

// ReportStore is the read side of persisted reports
type ReportStore interface {
	Latest(ctx context.Context) (*RankedReport, error)
	List(ctx context.Context, limit int) ([]*RankedReport, error)
	Get(ctx context.Context, runID string) (*RankedReport, error)
}

// UniverseProvider lists tradable symbols
type UniverseProvider interface {
	Symbols(ctx context.Context) ([]string, error)
}
