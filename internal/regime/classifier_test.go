package regime

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/contracts/seriestest"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/logger"
)

var defaultThresholds = Thresholds{LowVol: 0.015, HighVol: 0.03, MinDirectionalMove: 0.02}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		stats contracts.RegimeStats
		want  contracts.Regime
	}{
		{"quiet trend", contracts.RegimeStats{Volatility: 0.005, DirectionalMove: 0.08}, contracts.RegimeCalm},
		{"quiet without direction", contracts.RegimeStats{Volatility: 0.005, DirectionalMove: 0.01}, contracts.RegimeSideways},
		{"mid volatility trend", contracts.RegimeStats{Volatility: 0.02, DirectionalMove: 0.10}, contracts.RegimeSideways},
		{"high volatility", contracts.RegimeStats{Volatility: 0.05, DirectionalMove: 0.30}, contracts.RegimeVolatile},
		{"at high threshold", contracts.RegimeStats{Volatility: 0.03}, contracts.RegimeSideways},
		{"at low threshold", contracts.RegimeStats{Volatility: 0.015, DirectionalMove: 0.5}, contracts.RegimeSideways},
		{"exact min move", contracts.RegimeStats{Volatility: 0.0, DirectionalMove: 0.02}, contracts.RegimeCalm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.stats, defaultThresholds))
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	stats := contracts.RegimeStats{Volatility: 0.012, DirectionalMove: 0.04, Range: 0.06}
	first := Classify(stats, defaultThresholds)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(stats, defaultThresholds))
	}
}

func TestMeasure(t *testing.T) {
	s := seriestest.Compound("AAPL", 30, 100, 0.005)

	stats, err := Measure(s, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, stats.Volatility, 1e-9)
	assert.InDelta(t, math.Pow(1.005, 20)-1, stats.DirectionalMove, 1e-9)
	assert.Greater(t, stats.Range, 0.0)

	_, err = Measure(s.Head(20), 20)
	var insufficient *contracts.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 21, insufficient.Required)
}

func TestClassifier_SyntheticSeries(t *testing.T) {
	c := NewClassifier(strategyconfig.Default(), logger.Nop())

	tests := []struct {
		name   string
		series *contracts.PriceSeries
		want   contracts.Regime
	}{
		{"constant uptrend", seriestest.Compound("UP", 60, 100, 0.005), contracts.RegimeCalm},
		{"constant downtrend", seriestest.Compound("DOWN", 60, 100, -0.005), contracts.RegimeCalm},
		{"flat", seriestest.Flat("FLAT", 60, 100), contracts.RegimeSideways},
		{"large swings", seriestest.Alternating("SWING", 60, 100, 0.06, -0.06), contracts.RegimeVolatile},
		{"downtrend with swings", seriestest.Alternating("C", 60, 100, 0.04, -0.06), contracts.RegimeVolatile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := c.Classify(tt.series)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
