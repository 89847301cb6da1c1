package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/contracts/seriestest"
	"github.com/wonny/bullscan/internal/s0_data"
	"github.com/wonny/bullscan/pkg/logger"
)

func newTracker(series ...*contracts.PriceSeries) *Tracker {
	tr := NewTracker(s0_data.NewMemorySource(series...), []int{5, 1, 3}, logger.Nop())
	tr.now = func() time.Time { return seriestest.Day(100) }
	return tr
}

func TestEvaluate_ForwardReturns(t *testing.T) {
	// AAPL: 100, 101, 102, ... (day i close = 100+i)
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	tr := newTracker(seriestest.FromCloses("AAPL", closes))

	report, err := tr.Evaluate(context.Background(), []contracts.LoggedSignal{
		{Date: seriestest.Day(2), Symbol: "AAPL", Score: 80, Price: 100, Regime: "Calm"},
	})
	require.NoError(t, err)

	require.Len(t, report.Observations, 3)
	byHorizon := map[int]float64{}
	for _, o := range report.Observations {
		byHorizon[o.Horizon] = o.ReturnPct
	}
	// measured against the logged price, not the close on the logged date
	assert.InDelta(t, 3.0, byHorizon[1], 1e-9)
	assert.InDelta(t, 5.0, byHorizon[3], 1e-9)
	assert.InDelta(t, 7.0, byHorizon[5], 1e-9)

	require.Len(t, report.ByHorizon, 3)
	assert.Equal(t, 1, report.ByHorizon[0].Horizon)
	assert.Equal(t, 100.0, report.ByHorizon[0].WinRatePct)
	assert.Zero(t, report.Skipped)
}

func TestEvaluate_SkipsWithoutForwardData(t *testing.T) {
	tr := newTracker(seriestest.Flat("MSFT", 10, 50))

	report, err := tr.Evaluate(context.Background(), []contracts.LoggedSignal{
		{Date: seriestest.Day(7), Symbol: "MSFT", Price: 50, Regime: "Sideways"}, // 2 bars left: only h=1
		{Date: seriestest.Day(1), Symbol: "GONE", Price: 10, Regime: "Calm"},
	})
	require.NoError(t, err)

	assert.Len(t, report.Observations, 1)
	assert.Equal(t, 5, report.Skipped)
	assert.Equal(t, seriestest.Day(1), report.StartDate)
	assert.Equal(t, seriestest.Day(7), report.EndDate)
}

func TestEvaluate_RegimeBreakdown(t *testing.T) {
	up := seriestest.Compound("UP", 20, 100, 0.01)
	down := seriestest.Compound("DN", 20, 100, -0.01)
	tr := newTracker(up, down)

	report, err := tr.Evaluate(context.Background(), []contracts.LoggedSignal{
		{Date: seriestest.Day(0), Symbol: "UP", Price: 100, Regime: "Calm"},
		{Date: seriestest.Day(0), Symbol: "DN", Price: 100, Regime: "Volatile"},
		{Date: seriestest.Day(5), Symbol: "DN", Price: up.Bars[5].Close, Regime: "Calm"},
	})
	require.NoError(t, err)

	require.Len(t, report.ByHorizon, 3)
	for _, s := range report.ByHorizon {
		assert.Equal(t, 3, s.Count)
	}

	require.Len(t, report.ByRegime, 6)
	assert.Equal(t, "Calm", report.ByRegime[0].Regime)
	assert.Equal(t, 1, report.ByRegime[0].Horizon)
	assert.Equal(t, 2, report.ByRegime[0].Count)
	assert.InDelta(t, 50.0, report.ByRegime[0].WinRatePct, 1e-9)

	vol := report.ByRegime[3]
	assert.Equal(t, "Volatile", vol.Regime)
	assert.Equal(t, 0.0, vol.WinRatePct)
	assert.Less(t, vol.MeanReturnPct, 0.0)
}

func TestEvaluate_Empty(t *testing.T) {
	_, err := newTracker().Evaluate(context.Background(), nil)
	assert.Error(t, err)
}
