package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/s0_data/quality"
	"github.com/wonny/bullscan/pkg/logger"
)

// SeriesWriter persists fetched bars
type SeriesWriter interface {
	SaveSeries(ctx context.Context, series *contracts.PriceSeries) error
}

// Collector copies daily bars from a remote source into storage
// ⭐ SSOT: 시세 수집 오케스트레이션은 이 패키지에서만
// 스캔 사이클 밖에서만 병렬로 동작한다.
type Collector struct {
	source contracts.SeriesSource
	writer SeriesWriter
	gate   *quality.Gate
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers
}

// NewCollector creates a new Collector instance. gate may be nil.
func NewCollector(source contracts.SeriesSource, writer SeriesWriter, gate *quality.Gate, log *logger.Logger) *Collector {
	return &Collector{
		source: source,
		writer: writer,
		gate:   gate,
		logger: log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of a fetch operation
type FetchResult struct {
	Symbol  string
	Bars    int
	Quality *quality.Snapshot
	Skipped bool // 품질 게이트 불합격으로 저장하지 않음
	Error   error
}

// Collect fetches [from, to] for every symbol and saves it.
// Results come back in symbol order regardless of worker scheduling.
func (c *Collector) Collect(ctx context.Context, symbols []string, from, to time.Time, cfg Config) ([]FetchResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to collect")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol_count": len(symbols),
		"from":         from.Format("2006-01-02"),
		"to":           to.Format("2006-01-02"),
		"workers":      workers,
	}).Info("Starting price collection")

	type job struct {
		idx    int
		symbol string
	}

	results := make([]FetchResult, len(symbols))
	jobCh := make(chan job, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobCh {
				results[j.idx] = c.collectOne(ctx, workerID, j.symbol, from, to)
			}
		}(i)
	}

	for i, sym := range symbols {
		jobCh <- job{idx: i, symbol: sym}
	}
	close(jobCh)
	wg.Wait()

	failCount, skipCount := 0, 0
	for _, r := range results {
		switch {
		case r.Error != nil:
			failCount++
		case r.Skipped:
			skipCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": len(results) - failCount - skipCount,
		"skipped": skipCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Price collection completed")

	return results, ctx.Err()
}

// collectOne processes a single symbol
func (c *Collector) collectOne(ctx context.Context, workerID int, symbol string, from, to time.Time) FetchResult {
	if err := ctx.Err(); err != nil {
		return FetchResult{Symbol: symbol, Error: err}
	}

	log := c.logger.WithFields(map[string]interface{}{
		"worker": workerID,
		"symbol": symbol,
	})

	series, err := c.source.Fetch(ctx, symbol, from, to)
	if err != nil {
		log.WithError(err).Error("Failed to fetch prices")
		return FetchResult{Symbol: symbol, Error: err}
	}

	result := FetchResult{Symbol: symbol, Bars: series.Len()}
	if c.gate != nil {
		result.Quality = c.gate.Check(series, to)
		if !result.Quality.Passed {
			log.WithField("issues", result.Quality.Issues).Warn("Quality gate rejected series, not saving")
			result.Skipped = true
			return result
		}
	}

	if err := c.writer.SaveSeries(ctx, series); err != nil {
		log.WithError(err).Error("Failed to save prices")
		result.Error = err
		return result
	}

	log.WithField("count", series.Len()).Debug("Fetched prices")
	return result
}
