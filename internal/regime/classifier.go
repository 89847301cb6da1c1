package regime

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/indicators"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

// Thresholds for Classify
type Thresholds struct {
	LowVol             float64
	HighVol            float64
	MinDirectionalMove float64
}

// ThresholdsFrom reads thresholds from the strategy config
func ThresholdsFrom(cfg strategyconfig.Regime) Thresholds {
	return Thresholds{
		LowVol:             cfg.LowVolThreshold,
		HighVol:            cfg.HighVolThreshold,
		MinDirectionalMove: cfg.MinDirectionalMove,
	}
}

// Measure computes volatility, directional move and range over the last window bars.
// Needs window+1 bars.
func Measure(series *contracts.PriceSeries, window int) (contracts.RegimeStats, error) {
	n := series.Len()
	if n < window+1 {
		return contracts.RegimeStats{}, &contracts.InsufficientDataError{
			Symbol: series.Symbol, Indicator: "regime", Required: window + 1, Got: n,
		}
	}

	closes := series.Closes()
	vol, err := indicators.Volatility(closes, window)
	if err != nil {
		return contracts.RegimeStats{}, err
	}

	first := closes[n-1-window]
	lastClose := closes[n-1]

	highs := make([]float64, 0, window+1)
	lows := make([]float64, 0, window+1)
	for _, b := range series.Bars[n-1-window:] {
		highs = append(highs, math.Max(b.High, b.Close))
		lows = append(lows, math.Min(b.Low, b.Close))
	}
	hi := talib.Max(highs, len(highs))
	lo := talib.Min(lows, len(lows))

	return contracts.RegimeStats{
		Volatility:      vol,
		DirectionalMove: math.Abs(lastClose/first - 1),
		Range:           (hi[len(hi)-1] - lo[len(lo)-1]) / lastClose,
	}, nil
}

// Classify maps stats to a regime. Pure: same input, same label.
//
//	volatility > high                          → Volatile
//	volatility < low and directional ≥ min move → Calm
//	otherwise                                  → Sideways
func Classify(stats contracts.RegimeStats, th Thresholds) contracts.Regime {
	switch {
	case stats.Volatility > th.HighVol:
		return contracts.RegimeVolatile
	case stats.Volatility < th.LowVol && stats.DirectionalMove >= th.MinDirectionalMove:
		return contracts.RegimeCalm
	default:
		return contracts.RegimeSideways
	}
}

// Classifier measures and labels series with configured window and thresholds
// ⭐ SSOT: 레짐 판정은 여기서만
type Classifier struct {
	logger     *logger.Logger
	window     int
	thresholds Thresholds
}

// NewClassifier creates a classifier from the strategy config
func NewClassifier(cfg *strategyconfig.Config, log *logger.Logger) *Classifier {
	return &Classifier{
		logger:     log.Component("regime"),
		window:     cfg.Regime.Window,
		thresholds: ThresholdsFrom(cfg.Regime),
	}
}

// Window returns the bars-of-returns window
func (c *Classifier) Window() int {
	return c.window
}

// Classify measures series and returns its regime
func (c *Classifier) Classify(series *contracts.PriceSeries) (contracts.Regime, contracts.RegimeStats, error) {
	stats, err := Measure(series, c.window)
	if err != nil {
		return contracts.RegimeSideways, stats, err
	}

	r := Classify(stats, c.thresholds)

	c.logger.WithFields(map[string]interface{}{
		"symbol":           series.Symbol,
		"volatility":       stats.Volatility,
		"directional_move": stats.DirectionalMove,
		"range":            stats.Range,
		"regime":           r.String(),
	}).Debug("Classified regime")

	return r, stats, nil
}
