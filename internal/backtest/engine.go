package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/bullscan/internal/brain"
	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/selection"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

// Engine replays the scan pipeline over history and scores its calls
// ⭐ SSOT: 백테스트 실행은 여기서만 (부수효과 없음)
type Engine struct {
	pipeline *brain.Pipeline
	config   strategyconfig.Backtest
	minBars  int
	logger   *logger.Logger
}

// Pick is one top-K call and what happened after it
type Pick struct {
	Rank          int              `json:"rank"`
	Symbol        string           `json:"symbol"`
	Score         float64          `json:"score"`
	Regime        contracts.Regime `json:"regime"`
	EntryPrice    float64          `json:"entry_price"`
	ExitPrice     float64          `json:"exit_price"`
	ForwardReturn float64          `json:"forward_return"`
	Hit           bool             `json:"hit"`
}

// CycleRecord is one historical scan boundary
type CycleRecord struct {
	Date       time.Time `json:"date"`
	Picks      []Pick    `json:"picks"`
	Skipped    bool      `json:"skipped,omitempty"`
	SkipReason string    `json:"skip_reason,omitempty"`
}

// CallStat aggregates calls grouped by regime or by symbol
type CallStat struct {
	Calls            int     `json:"calls"`
	Hits             int     `json:"hits"`
	HitRate          float64 `json:"hit_rate"`
	AvgForwardReturn float64 `json:"avg_forward_return"`

	sumReturn float64
}

func (s *CallStat) add(p Pick) {
	s.Calls++
	s.sumReturn += p.ForwardReturn
	if p.Hit {
		s.Hits++
	}
}

func (s *CallStat) finish() {
	if s.Calls == 0 {
		return
	}
	s.HitRate = float64(s.Hits) / float64(s.Calls)
	s.AvgForwardReturn = s.sumReturn / float64(s.Calls)
}

// Result holds backtest results
type Result struct {
	StartDate        time.Time                      `json:"start_date"`
	EndDate          time.Time                      `json:"end_date"`
	CycleDays        int                            `json:"cycle_days"`
	HoldingDays      int                            `json:"holding_days"`
	TopK             int                            `json:"top_k"`
	Cycles           []CycleRecord                  `json:"cycles"`
	SkippedCycles    int                            `json:"skipped_cycles"`
	TotalCalls       int                            `json:"total_calls"`
	Hits             int                            `json:"hits"`
	HitRate          float64                        `json:"hit_rate"`
	AvgForwardReturn float64                        `json:"avg_forward_return"`
	ByRegime         map[contracts.Regime]*CallStat `json:"by_regime"`
	BySymbol         map[string]*CallStat           `json:"by_symbol"` // 종목별 승률/평균 수익률
	Duration         time.Duration                  `json:"duration"`
}

// NewEngine creates a backtest engine from a validated strategy config
func NewEngine(cfg *strategyconfig.Config, log *logger.Logger) (*Engine, error) {
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pipeline, err := brain.NewPipeline(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Engine{
		pipeline: pipeline,
		config:   cfg.Backtest,
		minBars:  cfg.MinBars(),
		logger:   log.Component("backtest"),
	}, nil
}

// Run replays every cycle boundary on the benchmark calendar.
// 경계 D 에서는 D 이후 봉을 모두 잘라낸 뒤 파이프라인을 실행한다.
func (e *Engine) Run(ctx context.Context, universe []*contracts.PriceSeries, benchmark *contracts.PriceSeries) (*Result, error) {
	started := time.Now()

	if benchmark == nil || benchmark.Len() == 0 {
		return nil, fmt.Errorf("benchmark series is empty")
	}

	calendar := benchmark.Bars
	first := e.minBars - 1
	if first+e.config.HoldingDays >= len(calendar) {
		return nil, fmt.Errorf("benchmark %s has %d bars, need at least %d for one cycle",
			benchmark.Symbol, len(calendar), first+e.config.HoldingDays+1)
	}

	result := &Result{
		CycleDays:   e.config.CycleDays,
		HoldingDays: e.config.HoldingDays,
		TopK:        e.config.TopK,
		ByRegime:    make(map[contracts.Regime]*CallStat),
		BySymbol:    make(map[string]*CallStat),
	}

	var sumReturn float64
	for b := first; b+e.config.HoldingDays < len(calendar); b += e.config.CycleDays {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		day := calendar[b].Date
		cycle, err := e.runCycle(day, universe, benchmark.Window(day))
		if err != nil {
			return nil, fmt.Errorf("cycle %s: %w", day.Format("2006-01-02"), err)
		}

		if cycle.Skipped {
			result.SkippedCycles++
		}
		for _, p := range cycle.Picks {
			result.TotalCalls++
			sumReturn += p.ForwardReturn

			if p.Hit {
				result.Hits++
			}

			byRegime, ok := result.ByRegime[p.Regime]
			if !ok {
				byRegime = &CallStat{}
				result.ByRegime[p.Regime] = byRegime
			}
			byRegime.add(p)

			bySymbol, ok := result.BySymbol[p.Symbol]
			if !ok {
				bySymbol = &CallStat{}
				result.BySymbol[p.Symbol] = bySymbol
			}
			bySymbol.add(p)
		}

		if len(result.Cycles) == 0 {
			result.StartDate = day
		}
		result.EndDate = day
		result.Cycles = append(result.Cycles, *cycle)
	}

	if result.TotalCalls > 0 {
		result.HitRate = float64(result.Hits) / float64(result.TotalCalls)
		result.AvgForwardReturn = sumReturn / float64(result.TotalCalls)
	}
	for _, stat := range result.ByRegime {
		stat.finish()
	}
	for _, stat := range result.BySymbol {
		stat.finish()
	}
	result.Duration = time.Since(started)

	e.logger.WithFields(map[string]interface{}{
		"cycles":       len(result.Cycles),
		"skipped":      result.SkippedCycles,
		"calls":        result.TotalCalls,
		"hit_rate":     fmt.Sprintf("%.2f%%", result.HitRate*100),
		"avg_forward":  fmt.Sprintf("%.2f%%", result.AvgForwardReturn*100),
		"holding_days": e.config.HoldingDays,
	}).Info("Backtest completed")

	return result, nil
}

// runCycle scores the universe as of day and measures each pick's forward return
func (e *Engine) runCycle(day time.Time, universe []*contracts.PriceSeries, benchmark *contracts.PriceSeries) (*CycleRecord, error) {
	cycle := &CycleRecord{Date: day}

	// 1. 진입일 이후 보유 기간만큼 봉이 있는 종목만 평가
	full := make(map[string]*contracts.PriceSeries, len(universe))
	entryIdx := make(map[string]int, len(universe))
	var window []*contracts.PriceSeries
	for _, s := range universe {
		idx := s.IndexOn(day)
		if idx < 0 || idx+e.config.HoldingDays >= s.Len() {
			continue
		}
		full[s.Symbol] = s
		entryIdx[s.Symbol] = idx
		window = append(window, s.Head(idx+1))
	}

	// 2. 점수 + 랭킹
	eval, err := e.pipeline.Evaluate(window, benchmark)
	if err != nil {
		return nil, err
	}
	if len(eval.Scores) == 0 {
		cycle.Skipped = true
		cycle.SkipReason = "no rankable symbol"
		return cycle, nil
	}

	entries, err := selection.Rank(eval.Scores, e.config.TopK)
	if err != nil {
		return nil, err
	}

	// 3. 사후 수익률
	for _, entry := range entries {
		s := full[entry.Symbol]
		idx := entryIdx[entry.Symbol]
		entryPrice := s.Bars[idx].Close
		exitPrice := s.Bars[idx+e.config.HoldingDays].Close
		ret := exitPrice/entryPrice - 1

		cycle.Picks = append(cycle.Picks, Pick{
			Rank:          entry.Rank,
			Symbol:        entry.Symbol,
			Score:         entry.Score,
			Regime:        entry.Regime,
			EntryPrice:    entryPrice,
			ExitPrice:     exitPrice,
			ForwardReturn: ret,
			Hit:           ret > 0,
		})
	}

	return cycle, nil
}
