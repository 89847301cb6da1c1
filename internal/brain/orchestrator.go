package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
	"github.com/wonny/bullscan/pkg/metrics"
)

// Orchestrator runs one scan cycle: validate → fetch → evaluate → rank → report
// ⭐ SSOT: 스캔 사이클 조율은 여기서만. 사이클 내부는 순차 실행.
type Orchestrator struct {
	source    contracts.SeriesSource
	reporters []contracts.Reporter
	metrics   *metrics.Recorder
	logger    *logger.Logger
	now       func() time.Time
}

// RunConfig holds per-run options
type RunConfig struct {
	AsOf    time.Time // zero → today
	Symbols []string  // optional override of the configured universe
	DryRun  bool      // skip reporters
}

// RunResult is the outcome of one cycle.
// On failure Report is nil and Reason says why; nothing was emitted.
type RunResult struct {
	RunID           string
	AsOf            time.Time
	Success         bool
	Reason          string
	Error           error
	CompletedStages []string
	Report          *contracts.RankedReport
	ReporterErrors  []error
	Duration        time.Duration
}

// NewOrchestrator creates an orchestrator. rec may be nil.
func NewOrchestrator(source contracts.SeriesSource, reporters []contracts.Reporter, rec *metrics.Recorder, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		source:    source,
		reporters: reporters,
		metrics:   rec,
		logger:    log.Component("brain"),
		now:       time.Now,
	}
}

// Run executes one scan cycle.
// Configuration errors abort before any fetch; per-symbol data errors are isolated.
func (o *Orchestrator) Run(ctx context.Context, cfg *strategyconfig.Config, run RunConfig) (*RunResult, error) {
	start := o.now()
	asOf := run.AsOf
	if asOf.IsZero() {
		asOf = start
	}
	result := &RunResult{AsOf: truncateDay(asOf)}

	fail := func(stage string, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s: %w", stage, err)
		result.Reason = result.Error.Error()
		result.Duration = o.now().Sub(start)
		o.metrics.RecordScan(false, result.Duration.Seconds())
		o.logger.WithRun(result.RunID).WithFields(map[string]interface{}{
			"stage":  stage,
			"reason": result.Reason,
		}).Error("Scan cycle failed")
		return result, result.Error
	}

	// Stage 1: 설정 검증 + RunContext
	rc, err := NewRunContext(cfg, asOf, start)
	if err != nil {
		return fail("config", err)
	}
	result.RunID = rc.RunID
	log := o.logger.WithRun(rc.RunID)

	pipeline, err := NewPipeline(rc.Config, o.logger)
	if err != nil {
		return fail("config", err)
	}
	result.CompletedStages = append(result.CompletedStages, "config")

	symbols := run.Symbols
	if len(symbols) == 0 {
		symbols = rc.Config.Universe.Symbols
	}

	log.WithFields(map[string]interface{}{
		"as_of":       rc.AsOf.Format("2006-01-02"),
		"symbols":     len(symbols),
		"benchmark":   rc.Config.Universe.Benchmark,
		"config_hash": rc.ConfigHash[:12],
		"scope":       rc.Config.Regime.Scope,
	}).Info("Starting scan cycle")

	// Stage 2: 시세 조회
	benchmark, universe, skipped, err := o.fetch(ctx, rc, symbols)
	if err != nil {
		return fail("fetch", err)
	}
	result.CompletedStages = append(result.CompletedStages, "fetch")

	// Stage 3: 지표 → 레짐 → 점수
	eval, err := pipeline.Evaluate(universe, benchmark)
	if err != nil {
		return fail("evaluate", err)
	}
	skipped = append(skipped, eval.Skipped...)
	for range eval.Scores {
		o.metrics.RecordScored()
	}
	for range eval.Skipped {
		o.metrics.RecordSkipped("data")
	}
	result.CompletedStages = append(result.CompletedStages, "evaluate")

	// Stage 4: 랭킹
	entries, err := pipeline.Rank(eval.Scores)
	if err != nil {
		return fail("rank", err)
	}
	result.CompletedStages = append(result.CompletedStages, "rank")

	report := &contracts.RankedReport{
		RunID:       rc.RunID,
		AsOf:        rc.AsOf,
		GeneratedAt: o.now(),
		StrategyID:  rc.Config.Meta.StrategyID,
		ConfigHash:  rc.ConfigHash,
		Entries:     entries,
		Skipped:     skipped,
	}
	result.Report = report
	result.Success = true

	// Stage 5: 리포트 (외부 협력자 실패는 사이클 결과를 바꾸지 않음)
	if !run.DryRun {
		for _, rep := range o.reporters {
			if err := rep.Report(ctx, report); err != nil {
				log.WithError(err).Warn("Reporter failed")
				result.ReporterErrors = append(result.ReporterErrors, err)
			}
		}
		result.CompletedStages = append(result.CompletedStages, "report")
	}

	result.Duration = o.now().Sub(start)
	o.metrics.RecordScan(true, result.Duration.Seconds())
	o.metrics.RecordTopScore(entries[0].Score)

	log.WithFields(map[string]interface{}{
		"scored":    len(eval.Scores),
		"skipped":   len(skipped),
		"top":       entries[0].Symbol,
		"top_score": entries[0].Score,
		"duration":  result.Duration.String(),
	}).Info("Scan cycle completed")

	return result, nil
}

// fetch loads the benchmark (fatal on failure) and every symbol (isolated failures)
func (o *Orchestrator) fetch(ctx context.Context, rc *RunContext, symbols []string) (*contracts.PriceSeries, []*contracts.PriceSeries, []contracts.SkippedSymbol, error) {
	from := rc.AsOf.AddDate(0, 0, -rc.Config.Universe.HistoryDays)
	to := rc.AsOf

	load := func(symbol string) (*contracts.PriceSeries, error) {
		started := o.now()
		series, err := o.source.Fetch(ctx, symbol, from, to)
		o.metrics.RecordFetch("series", o.now().Sub(started).Seconds())
		if err != nil {
			return nil, err
		}
		if err := series.Validate(); err != nil {
			return nil, err
		}
		return series.Window(rc.AsOf), nil
	}

	benchmark, err := load(rc.Config.Universe.Benchmark)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("benchmark %s unavailable: %w", rc.Config.Universe.Benchmark, err)
	}
	if benchmark.Len() == 0 {
		return nil, nil, nil, fmt.Errorf("benchmark %s returned no bars", rc.Config.Universe.Benchmark)
	}

	var universe []*contracts.PriceSeries
	var skipped []contracts.SkippedSymbol
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}

		series, err := load(symbol)
		if err != nil {
			o.logger.WithFields(map[string]interface{}{
				"run_id": rc.RunID,
				"symbol": symbol,
				"error":  err.Error(),
			}).Warn("Fetch failed, symbol excluded")
			skipped = append(skipped, contracts.SkippedSymbol{Symbol: symbol, Reason: "fetch: " + err.Error()})
			o.metrics.RecordSkipped("fetch")
			continue
		}
		universe = append(universe, series)
	}

	return benchmark, universe, skipped, nil
}
