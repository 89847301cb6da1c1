package s0_data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts/seriestest"
)

func TestMemorySource_Fetch(t *testing.T) {
	src := NewMemorySource(seriestest.Compound("AAPL", 10, 100, 0.01))

	s, err := src.Fetch(context.Background(), "AAPL", seriestest.Day(2), seriestest.Day(5))
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())
	assert.Equal(t, seriestest.Day(2), s.Bars[0].Date)
	assert.Equal(t, seriestest.Day(5), s.Bars[3].Date)

	// copies, not views
	s.Bars[0].Close = -1
	again, err := src.Fetch(context.Background(), "AAPL", seriestest.Day(2), seriestest.Day(2))
	require.NoError(t, err)
	assert.Greater(t, again.Bars[0].Close, 0.0)
}

func TestMemorySource_Unknown(t *testing.T) {
	_, err := NewMemorySource().Fetch(context.Background(), "ZZZ", seriestest.Day(0), seriestest.Day(1))
	assert.Error(t, err)
}

func TestMemorySource_Symbols(t *testing.T) {
	src := NewMemorySource(seriestest.Flat("MSFT", 3, 1), seriestest.Flat("AAPL", 3, 1))
	syms, err := src.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, syms)
}
