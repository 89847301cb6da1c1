package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/pkg/logger"
)

// Tracker measures how logged picks performed afterwards
// ⭐ SSOT: 추천 기록 사후 성과 분석은 여기서만
type Tracker struct {
	source   contracts.SeriesSource
	horizons []int
	logger   *logger.Logger
	now      func() time.Time
}

// NewTracker creates a tracker for the given forward horizons (trading bars)
func NewTracker(source contracts.SeriesSource, horizons []int, log *logger.Logger) *Tracker {
	hs := append([]int(nil), horizons...)
	sort.Ints(hs)
	return &Tracker{
		source:   source,
		horizons: hs,
		logger:   log.Component("tracker"),
		now:      time.Now,
	}
}

// Observation is one (signal, horizon) forward return
type Observation struct {
	Symbol    string    `json:"symbol"`
	Date      time.Time `json:"date"`
	Horizon   int       `json:"horizon"`
	Regime    string    `json:"regime"`
	ReturnPct float64   `json:"return_pct"`
}

// Summary aggregates observations for one horizon (optionally one regime)
type Summary struct {
	Regime        string  `json:"regime,omitempty"`
	Horizon       int     `json:"horizon"`
	Count         int     `json:"count"`
	MeanReturnPct float64 `json:"mean_return_pct"`
	WinRatePct    float64 `json:"win_rate_pct"`
}

// PerformanceReport represents performance analysis report
type PerformanceReport struct {
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	Signals      int           `json:"signals"`
	Observations []Observation `json:"observations"`
	Skipped      int           `json:"skipped"` // (signal, horizon) pairs without forward data

	ByHorizon []Summary `json:"by_horizon"`
	ByRegime  []Summary `json:"by_regime"`
}

// Evaluate computes forward returns for every logged signal.
// Horizon h is the h-th bar strictly after the logged date, measured against the logged price.
func (t *Tracker) Evaluate(ctx context.Context, signals []contracts.LoggedSignal) (*PerformanceReport, error) {
	if len(signals) == 0 {
		return nil, fmt.Errorf("no logged signals")
	}

	report := &PerformanceReport{Signals: len(signals)}

	// 1. 종목별 최초 기록일
	firstSeen := make(map[string]time.Time)
	for _, s := range signals {
		if d, ok := firstSeen[s.Symbol]; !ok || s.Date.Before(d) {
			firstSeen[s.Symbol] = s.Date
		}
		if report.StartDate.IsZero() || s.Date.Before(report.StartDate) {
			report.StartDate = s.Date
		}
		if s.Date.After(report.EndDate) {
			report.EndDate = s.Date
		}
	}

	// 2. 종목별 1회 조회
	to := t.now()
	series := make(map[string]*contracts.PriceSeries, len(firstSeen))
	for sym, from := range firstSeen {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := t.source.Fetch(ctx, sym, from, to)
		if err != nil {
			t.logger.WithError(err).WithField("symbol", sym).Warn("No forward prices")
			continue
		}
		series[sym] = s
	}

	// 3. 사후 수익률
	for _, sig := range signals {
		s := series[sig.Symbol]
		for _, h := range t.horizons {
			exitPrice, ok := forwardClose(s, sig.Date, h)
			if !ok || sig.Price <= 0 {
				report.Skipped++
				continue
			}
			report.Observations = append(report.Observations, Observation{
				Symbol:    sig.Symbol,
				Date:      sig.Date,
				Horizon:   h,
				Regime:    sig.Regime,
				ReturnPct: (exitPrice - sig.Price) / sig.Price * 100,
			})
		}
	}

	report.ByHorizon = summarize(report.Observations, false)
	report.ByRegime = summarize(report.Observations, true)

	t.logger.WithFields(map[string]interface{}{
		"signals":      report.Signals,
		"observations": len(report.Observations),
		"skipped":      report.Skipped,
	}).Info("Performance evaluation completed")

	return report, nil
}

// forwardClose returns the close of the h-th bar after day
func forwardClose(s *contracts.PriceSeries, day time.Time, h int) (float64, bool) {
	if s == nil {
		return 0, false
	}
	idx := sort.Search(s.Len(), func(i int) bool { return s.Bars[i].Date.After(day) })
	target := idx + h - 1
	if target >= s.Len() {
		return 0, false
	}
	return s.Bars[target].Close, true
}

// summarize groups by horizon, or by (regime, horizon)
func summarize(obs []Observation, byRegime bool) []Summary {
	type key struct {
		regime  string
		horizon int
	}
	sums := make(map[key]*Summary)
	var order []key

	for _, o := range obs {
		k := key{horizon: o.Horizon}
		if byRegime {
			k.regime = o.Regime
		}
		s, ok := sums[k]
		if !ok {
			s = &Summary{Regime: k.regime, Horizon: k.horizon}
			sums[k] = s
			order = append(order, k)
		}
		s.Count++
		s.MeanReturnPct += o.ReturnPct
		if o.ReturnPct > 0 {
			s.WinRatePct++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].regime != order[j].regime {
			return order[i].regime < order[j].regime
		}
		return order[i].horizon < order[j].horizon
	})

	out := make([]Summary, 0, len(order))
	for _, k := range order {
		s := sums[k]
		s.MeanReturnPct /= float64(s.Count)
		s.WinRatePct = s.WinRatePct / float64(s.Count) * 100
		out = append(out, *s)
	}
	return out
}
