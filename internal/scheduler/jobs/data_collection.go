package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/bullscan/internal/s0_data/collector"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

// DataCollectionJob refreshes stored daily bars for the configured universe
// ⭐ SSOT: 시세 수집 스케줄은 이 Job에서만
type DataCollectionJob struct {
	collector    *collector.Collector
	strategyPath string
	schedule     string
	lookbackDays int
	workers      int
	logger       *logger.Logger
	now          func() time.Time
}

// NewDataCollectionJob creates a new data collection job
func NewDataCollectionJob(col *collector.Collector, strategyPath, schedule string, log *logger.Logger) *DataCollectionJob {
	return &DataCollectionJob{
		collector:    col,
		strategyPath: strategyPath,
		schedule:     schedule,
		lookbackDays: 10,
		workers:      4,
		logger:       log,
		now:          time.Now,
	}
}

// Name returns the job name
func (j *DataCollectionJob) Name() string {
	return "data_collection"
}

// Schedule returns the cron schedule
func (j *DataCollectionJob) Schedule() string {
	return j.schedule
}

// Run collects the last lookbackDays of bars for the universe and benchmark.
// Fails only when every symbol failed.
func (j *DataCollectionJob) Run(ctx context.Context) error {
	cfg, _, err := strategyconfig.Load(j.strategyPath)
	if err != nil {
		return fmt.Errorf("load strategy: %w", err)
	}

	symbols := append([]string{cfg.Universe.Benchmark}, cfg.Universe.Symbols...)
	to := j.now()
	from := to.AddDate(0, 0, -j.lookbackDays)

	results, err := j.collector.Collect(ctx, symbols, from, to, collector.Config{Workers: j.workers})
	if err != nil {
		return fmt.Errorf("collect prices: %w", err)
	}

	failed, skipped := 0, 0
	for _, r := range results {
		switch {
		case r.Error != nil:
			failed++
		case r.Skipped:
			skipped++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d symbols failed", failed)
	}

	j.logger.WithFields(map[string]interface{}{
		"symbols": len(results),
		"skipped": skipped,
		"failed":  failed,
	}).Info("Scheduled data collection completed")
	return nil
}
