package s1_universe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts/seriestest"
	"github.com/wonny/bullscan/internal/s0_data"
	"github.com/wonny/bullscan/pkg/logger"
)

func testSource() *s0_data.MemorySource {
	// 1,000,000 shares/day
	return s0_data.NewMemorySource(
		seriestest.Flat("BIG", 30, 100),  // $100M/day
		seriestest.Flat("MID", 30, 50),   // $50M/day
		seriestest.Flat("PENNY", 30, 2),  // below min price
		seriestest.Flat("THIN", 30, 10),  // $10M/day
		seriestest.Flat("YOUNG", 10, 80), // short history
		seriestest.Flat("OIL", 30, 90),
	)
}

func testCandidates() []Candidate {
	return []Candidate{
		{Symbol: "MID", Sector: "Information Technology"},
		{Symbol: "BIG", Sector: "Information Technology"},
		{Symbol: "PENNY", Sector: "Financials"},
		{Symbol: "THIN", Sector: "Utilities"},
		{Symbol: "YOUNG", Sector: "Health Care"},
		{Symbol: "OIL", Sector: "Energy"},
		{Symbol: "GONE", Sector: "Industrials"},
	}
}

func TestBuilder_Build(t *testing.T) {
	cfg := DefaultConfig(21)
	cfg.ExcludeSectors = []string{"energy"}
	b := NewBuilder(testSource(), cfg, logger.Nop())

	asOf := seriestest.Day(29)
	u, err := b.Build(context.Background(), testCandidates(), asOf, 60)
	require.NoError(t, err)

	assert.Equal(t, asOf, u.Date)
	assert.Equal(t, []string{"MID", "BIG"}, u.Symbols, "candidate order is preserved")
	assert.Equal(t, 2, u.TotalCount)

	require.Len(t, u.Excluded, 5)
	assert.Contains(t, u.Excluded["PENNY"], "price")
	assert.Contains(t, u.Excluded["THIN"], "dollar volume")
	assert.Contains(t, u.Excluded["YOUNG"], "history 10 bars")
	assert.Contains(t, u.Excluded["OIL"], "excluded sector")
	assert.Contains(t, u.Excluded["GONE"], "fetch:")
}

func TestBuilder_MaxSymbolsKeepsMostLiquid(t *testing.T) {
	cfg := DefaultConfig(21)
	cfg.MaxSymbols = 2
	b := NewBuilder(testSource(), cfg, logger.Nop())

	u, err := b.Build(context.Background(), testCandidates(), seriestest.Day(29), 60)
	require.NoError(t, err)

	// BIG $100M, OIL $90M, MID $50M
	assert.Equal(t, []string{"BIG", "OIL"}, u.Symbols)
	assert.Equal(t, "liquidity rank 3 > 2", u.Excluded["MID"])
}

func TestBuilder_AsOfWindow(t *testing.T) {
	b := NewBuilder(testSource(), DefaultConfig(21), logger.Nop())

	// only 16 bars of each series exist on or before Day(15)
	u, err := b.Build(context.Background(), []Candidate{{Symbol: "BIG"}}, seriestest.Day(15), 60)
	require.NoError(t, err)
	assert.Empty(t, u.Symbols)
	assert.Contains(t, u.Excluded["BIG"], "history 16 bars")
}

func TestBuilder_NoCandidates(t *testing.T) {
	b := NewBuilder(testSource(), DefaultConfig(21), logger.Nop())
	_, err := b.Build(context.Background(), nil, seriestest.Day(29), 60)
	assert.Error(t, err)
}

func TestAverageDollarVolume(t *testing.T) {
	s := seriestest.WithVolumes(seriestest.Flat("X", 5, 10), 100, 300)
	assert.InDelta(t, 2000.0, averageDollarVolume(s, 2), 1e-9)
	assert.InDelta(t, 10*(3*1e6+400)/5, averageDollarVolume(s, 50), 1e-6)
}
