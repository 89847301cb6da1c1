package scoring

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/contracts/seriestest"
	"github.com/wonny/bullscan/internal/indicators"
	"github.com/wonny/bullscan/internal/regime"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

func newEngine(t *testing.T, cfg *strategyconfig.Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, logger.Nop())
	require.NoError(t, err)
	return e
}

func allMissing(symbol string) *contracts.IndicatorBundle {
	b := &contracts.IndicatorBundle{Symbol: symbol, Price: 10}
	for _, name := range []string{
		contracts.IndicatorSMACross,
		contracts.IndicatorEMACross,
		contracts.IndicatorRSI,
		contracts.IndicatorMomentum,
		contracts.IndicatorVolumeRatio,
		contracts.IndicatorRelativeStrength,
		contracts.IndicatorVolatility,
	} {
		b.MarkMissing(name)
	}
	return b
}

func randomWeights(r *rand.Rand) strategyconfig.Weights {
	parts := make([]int, 7)
	remaining := 100
	for i := 0; i < 6; i++ {
		parts[i] = r.Intn(remaining + 1)
		remaining -= parts[i]
	}
	parts[6] = remaining
	r.Shuffle(len(parts), func(i, j int) { parts[i], parts[j] = parts[j], parts[i] })
	return strategyconfig.Weights{
		SMACross: parts[0], EMACross: parts[1], RSI: parts[2], Momentum: parts[3],
		VolumeRatio: parts[4], RelativeStrength: parts[5], Stability: parts[6],
	}
}

func randomAdjustment(r *rand.Rand) strategyconfig.RegimeAdjustment {
	return strategyconfig.RegimeAdjustment{
		Trend: r.Float64() * 3, Oscillator: r.Float64() * 3, Momentum: r.Float64() * 3,
		Volume: r.Float64() * 3, RelativeStrength: r.Float64() * 3, Stability: r.Float64() * 3,
	}
}

// 어떤 유효 가중치/입력 조합에서도 점수는 [0,100]
func TestScore_AlwaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	regimes := []contracts.Regime{contracts.RegimeCalm, contracts.RegimeVolatile, contracts.RegimeSideways}

	for i := 0; i < 500; i++ {
		cfg := strategyconfig.Default()
		cfg.Scoring.Weights = randomWeights(r)
		cfg.Scoring.RegimeAdjustments = strategyconfig.RegimeAdjustments{
			Calm: randomAdjustment(r), Volatile: randomAdjustment(r), Sideways: randomAdjustment(r),
		}
		e := newEngine(t, cfg)

		b := &contracts.IndicatorBundle{
			Symbol:           "RND",
			SMACross:         r.NormFloat64() * 0.2,
			EMACross:         r.NormFloat64() * 0.2,
			RSI:              r.Float64() * 100,
			Momentum:         r.NormFloat64() * 0.5,
			VolumeRatio:      r.Float64() * 10,
			RelativeStrength: r.NormFloat64() * 0.3,
			Volatility:       r.Float64() * 0.2,
		}
		if r.Intn(4) == 0 {
			b.MarkMissing(contracts.IndicatorRSI)
		}

		s, err := e.Score(b, regimes[r.Intn(len(regimes))])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 100.0)
	}
}

func TestNewEngine_WeightsSumTo99(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Scoring.Weights.SMACross = 19

	_, err := NewEngine(cfg, logger.Nop())
	var weightErr *contracts.InvalidWeightConfigError
	require.True(t, errors.As(err, &weightErr))
	assert.Equal(t, 99, weightErr.Got)
}

func TestScore_NeutralBundle(t *testing.T) {
	e := newEngine(t, strategyconfig.Default())

	s, err := e.Score(allMissing("KO"), contracts.RegimeSideways)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, s.Score, 1e-9)
	assert.True(t, s.LowConfidence)
	assert.Len(t, s.Components, len(Components))
}

func TestScore_NeutralValueIsConfigurable(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Scoring.Normalization.NeutralValue = 0.3
	e := newEngine(t, cfg)

	s, err := e.Score(allMissing("KO"), contracts.RegimeSideways)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, s.Score, 1e-9)
}

func TestScore_UptrendUpperHalf(t *testing.T) {
	cfg := strategyconfig.Default()
	series := seriestest.Compound("UP", 60, 100, 0.005)
	bench := seriestest.Compound("SPY", 60, 100, 0.001)

	b, err := indicators.NewCalculator(cfg, logger.Nop()).Compute(series, bench)
	require.NoError(t, err)
	r, _, err := regime.NewClassifier(cfg, logger.Nop()).Classify(series)
	require.NoError(t, err)
	assert.Equal(t, contracts.RegimeCalm, r)

	s, err := newEngine(t, cfg).Score(b, r)
	require.NoError(t, err)
	assert.Greater(t, s.Score, 50.0)
	assert.Equal(t, contracts.RegimeCalm, s.Regime)
}

func TestScore_RegimeAdjustment(t *testing.T) {
	e := newEngine(t, strategyconfig.Default())
	b := &contracts.IndicatorBundle{
		Symbol:      "TSLA",
		SMACross:    0.01,
		EMACross:    0.01,
		RSI:         60,
		Momentum:    0.04,
		VolumeRatio: 1,
	}

	calm, err := e.Score(b, contracts.RegimeCalm)
	require.NoError(t, err)
	sideways, err := e.Score(b, contracts.RegimeSideways)
	require.NoError(t, err)
	volatile, err := e.Score(b, contracts.RegimeVolatile)
	require.NoError(t, err)

	assert.Greater(t, calm.Score, sideways.Score)
	assert.Greater(t, sideways.Score, volatile.Score)
	assert.Less(t, volatile.Components[contracts.IndicatorMomentum], sideways.Components[contracts.IndicatorMomentum])
}

func TestNormalize(t *testing.T) {
	n := strategyconfig.Default().Scoring.Normalization

	b := &contracts.IndicatorBundle{
		SMACross:         0.05,
		EMACross:         -0.10,
		RSI:              80,
		Momentum:         0,
		VolumeRatio:      1,
		RelativeStrength: 0.025,
		Volatility:       0.025,
	}
	got := Normalize(b, n)

	assert.InDelta(t, 1.0, got[contracts.IndicatorSMACross], 1e-9)
	assert.InDelta(t, 0.0, got[contracts.IndicatorEMACross], 1e-9)
	assert.InDelta(t, 0.4, got[contracts.IndicatorRSI], 1e-9) // 0.8 × (1-0.5)
	assert.InDelta(t, 0.5, got[contracts.IndicatorMomentum], 1e-9)
	assert.InDelta(t, 0.5, got[contracts.IndicatorVolumeRatio], 1e-9)
	assert.InDelta(t, 0.75, got[contracts.IndicatorRelativeStrength], 1e-9)
	assert.InDelta(t, 0.5, got[ComponentStability], 1e-9)
}
