package scoring

import (
	"math"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

// Engine combines normalized indicators into a 0~100 bullish score
// ⭐ SSOT: 점수 계산은 여기서만
type Engine struct {
	logger  *logger.Logger
	weights map[string]float64
	total   float64
	norm    strategyconfig.Normalization
	adjust  strategyconfig.RegimeAdjustments
}

// NewEngine validates weights once and builds the engine.
// Returns *contracts.InvalidWeightConfigError before any scoring happens.
func NewEngine(cfg *strategyconfig.Config, log *logger.Logger) (*Engine, error) {
	w := cfg.Scoring.Weights
	if err := strategyconfig.ValidateWeights(w, cfg.Scoring.TotalWeight); err != nil {
		return nil, err
	}

	return &Engine{
		logger: log.Component("scoring"),
		weights: map[string]float64{
			contracts.IndicatorSMACross:         float64(w.SMACross),
			contracts.IndicatorEMACross:         float64(w.EMACross),
			contracts.IndicatorRSI:              float64(w.RSI),
			contracts.IndicatorMomentum:         float64(w.Momentum),
			contracts.IndicatorVolumeRatio:      float64(w.VolumeRatio),
			contracts.IndicatorRelativeStrength: float64(w.RelativeStrength),
			ComponentStability:                  float64(w.Stability),
		},
		total:  float64(cfg.Scoring.TotalWeight),
		norm:   cfg.Scoring.Normalization,
		adjust: cfg.Scoring.RegimeAdjustments,
	}, nil
}

// multipliers returns the per-component factors for a regime
func (e *Engine) multipliers(r contracts.Regime) map[string]float64 {
	var a strategyconfig.RegimeAdjustment
	switch r {
	case contracts.RegimeCalm:
		a = e.adjust.Calm
	case contracts.RegimeVolatile:
		a = e.adjust.Volatile
	default:
		a = e.adjust.Sideways
	}

	return map[string]float64{
		contracts.IndicatorSMACross:         a.Trend,
		contracts.IndicatorEMACross:         a.Trend,
		contracts.IndicatorRSI:              a.Oscillator,
		contracts.IndicatorMomentum:         a.Momentum,
		contracts.IndicatorVolumeRatio:      a.Volume,
		contracts.IndicatorRelativeStrength: a.RelativeStrength,
		ComponentStability:                  a.Stability,
	}
}

// Score computes the weighted, regime-adjusted score for one bundle.
// Each component contributes weight × clamp01(normalized × multiplier), scaled to 100.
func (e *Engine) Score(b *contracts.IndicatorBundle, r contracts.Regime) (*contracts.SignalScore, error) {
	normalized := Normalize(b, e.norm)
	mult := e.multipliers(r)

	components := make(map[string]float64, len(Components))
	var score float64
	for _, name := range Components {
		points := e.weights[name] * clamp01(normalized[name]*mult[name]) * 100 / e.total
		components[name] = points
		score += points
	}

	// 부동소수 합산 오차 흡수
	if score > 100 && score < 100+1e-9 {
		score = 100
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return nil, &contracts.ScoreOutOfRangeError{Symbol: b.Symbol, Score: score}
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":         b.Symbol,
		"regime":         r.String(),
		"score":          score,
		"low_confidence": b.LowConfidence,
	}).Debug("Scored symbol")

	return &contracts.SignalScore{
		Symbol:        b.Symbol,
		Score:         score,
		Price:         b.Price,
		Regime:        r,
		LowConfidence: b.LowConfidence,
		Components:    components,
	}, nil
}
