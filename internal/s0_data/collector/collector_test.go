package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/contracts/seriestest"
	"github.com/wonny/bullscan/internal/s0_data"
	"github.com/wonny/bullscan/internal/s0_data/quality"
	"github.com/wonny/bullscan/pkg/logger"
)

type memWriter struct {
	mu    sync.Mutex
	saved map[string]int
	fail  string
}

func (w *memWriter) SaveSeries(ctx context.Context, s *contracts.PriceSeries) error {
	if s.Symbol == w.fail {
		return errors.New("disk full")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.saved == nil {
		w.saved = make(map[string]int)
	}
	w.saved[s.Symbol] = s.Len()
	return nil
}

func TestCollect(t *testing.T) {
	src := s0_data.NewMemorySource(
		seriestest.Compound("AAPL", 30, 100, 0.01),
		seriestest.Flat("MSFT", 30, 300),
		seriestest.Flat("NVDA", 30, 400),
		seriestest.Flat("IPO", 10, 20),
	)
	writer := &memWriter{fail: "NVDA"}
	c := NewCollector(src, writer, quality.NewGate(quality.DefaultConfig(21)), logger.Nop())

	results, err := c.Collect(context.Background(),
		[]string{"AAPL", "MISSING", "MSFT", "NVDA", "IPO"},
		seriestest.Day(0), seriestest.Day(29), Config{Workers: 3})
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.NoError(t, results[0].Error)
	assert.Equal(t, 30, results[0].Bars)
	require.NotNil(t, results[0].Quality)
	assert.True(t, results[0].Quality.Passed)

	assert.Equal(t, "MISSING", results[1].Symbol)
	assert.Error(t, results[1].Error)

	assert.NoError(t, results[2].Error)
	assert.EqualError(t, results[3].Error, "disk full")

	// 10봉 + 20일 경과 → 게이트 불합격, 저장 안 함
	assert.NoError(t, results[4].Error)
	assert.True(t, results[4].Skipped)
	require.NotNil(t, results[4].Quality)
	assert.False(t, results[4].Quality.Passed)

	assert.Equal(t, map[string]int{"AAPL": 30, "MSFT": 30}, writer.saved)
}

func TestCollect_NoGateSavesEverything(t *testing.T) {
	writer := &memWriter{}
	c := NewCollector(s0_data.NewMemorySource(seriestest.Flat("IPO", 10, 20)), writer, nil, logger.Nop())

	results, err := c.Collect(context.Background(), []string{"IPO"}, seriestest.Day(0), seriestest.Day(29), Config{Workers: 1})
	require.NoError(t, err)
	assert.False(t, results[0].Skipped)
	assert.Nil(t, results[0].Quality)
	assert.Equal(t, map[string]int{"IPO": 10}, writer.saved)
}

func TestCollect_NoSymbols(t *testing.T) {
	c := NewCollector(s0_data.NewMemorySource(), &memWriter{}, nil, logger.Nop())
	_, err := c.Collect(context.Background(), nil, time.Time{}, time.Time{}, Config{})
	assert.Error(t, err)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(s0_data.NewMemorySource(seriestest.Flat("AAPL", 5, 1)), &memWriter{}, nil, logger.Nop())
	results, err := c.Collect(ctx, []string{"AAPL"}, seriestest.Day(0), seriestest.Day(4), Config{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, results[0].Error, context.Canceled)
}
