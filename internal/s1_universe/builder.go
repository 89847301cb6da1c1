package s1_universe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/pkg/logger"
)

// Candidate is a symbol offered for inclusion (e.g. an index constituent)
type Candidate struct {
	Symbol string
	Name   string
	Sector string
}

// Config holds universe filter criteria
type Config struct {
	MinPrice        float64  `yaml:"min_price"`         // 최소 종가 ($)
	MinDollarVolume float64  `yaml:"min_dollar_volume"` // 최소 평균 거래대금 ($)
	LiquidityWindow int      `yaml:"liquidity_window"`  // 거래대금 평균 봉 수
	MinBars         int      `yaml:"min_bars"`          // 최소 보유 봉 수
	MaxSymbols      int      `yaml:"max_symbols"`       // 0 = 제한 없음
	ExcludeSectors  []string `yaml:"exclude_sectors"`   // 제외 섹터
}

// DefaultConfig returns liquid large-cap filters
func DefaultConfig(minBars int) Config {
	return Config{
		MinPrice:        5,
		MinDollarVolume: 20_000_000,
		LiquidityWindow: 20,
		MinBars:         minBars,
	}
}

// Universe is the filtered symbol list
type Universe struct {
	Date       time.Time         `json:"date"`
	Symbols    []string          `json:"symbols"`
	Excluded   map[string]string `json:"excluded"`
	TotalCount int               `json:"total_count"`
}

// Builder constructs the scan universe from candidates and their daily bars
type Builder struct {
	source contracts.SeriesSource
	config Config
	logger *logger.Logger
}

// NewBuilder creates a new Universe Builder
func NewBuilder(source contracts.SeriesSource, config Config, log *logger.Logger) *Builder {
	if config.LiquidityWindow < 1 {
		config.LiquidityWindow = 20
	}
	return &Builder{
		source: source,
		config: config,
		logger: log.Component("universe"),
	}
}

type liquidity struct {
	symbol       string
	dollarVolume float64
}

// Build filters candidates as of asOf, fetching historyDays of bars for each.
// Symbols keep candidate order unless MaxSymbols trims to the most liquid.
// ⭐ SSOT: 유니버스 필터링은 여기서만
func (b *Builder) Build(ctx context.Context, candidates []Candidate, asOf time.Time, historyDays int) (*Universe, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no universe candidates")
	}

	universe := &Universe{
		Date:     asOf,
		Symbols:  make([]string, 0),
		Excluded: make(map[string]string),
	}
	from := asOf.AddDate(0, 0, -historyDays)

	var passed []liquidity
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if reason := b.checkSector(c); reason != "" {
			universe.Excluded[c.Symbol] = reason
			continue
		}

		series, err := b.source.Fetch(ctx, c.Symbol, from, asOf)
		if err != nil {
			universe.Excluded[c.Symbol] = "fetch: " + err.Error()
			continue
		}

		dv, reason := b.checkSeries(series.Window(asOf))
		if reason != "" {
			universe.Excluded[c.Symbol] = reason
			continue
		}
		passed = append(passed, liquidity{symbol: c.Symbol, dollarVolume: dv})
	}

	if b.config.MaxSymbols > 0 && len(passed) > b.config.MaxSymbols {
		ranked := append([]liquidity(nil), passed...)
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].dollarVolume != ranked[j].dollarVolume {
				return ranked[i].dollarVolume > ranked[j].dollarVolume
			}
			return ranked[i].symbol < ranked[j].symbol
		})
		keep := make(map[string]bool, b.config.MaxSymbols)
		for i, l := range ranked {
			if i < b.config.MaxSymbols {
				keep[l.symbol] = true
				continue
			}
			universe.Excluded[l.symbol] = fmt.Sprintf("liquidity rank %d > %d", i+1, b.config.MaxSymbols)
		}
		filtered := passed[:0]
		for _, l := range passed {
			if keep[l.symbol] {
				filtered = append(filtered, l)
			}
		}
		passed = filtered
	}

	for _, l := range passed {
		universe.Symbols = append(universe.Symbols, l.symbol)
	}
	universe.TotalCount = len(universe.Symbols)

	b.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"selected":   universe.TotalCount,
		"excluded":   len(universe.Excluded),
	}).Info("Universe built")

	return universe, nil
}

func (b *Builder) checkSector(c Candidate) string {
	for _, sector := range b.config.ExcludeSectors {
		if strings.EqualFold(c.Sector, sector) {
			return fmt.Sprintf("excluded sector (%s)", c.Sector)
		}
	}
	return ""
}

// checkSeries returns the average dollar volume, or the exclusion reason
func (b *Builder) checkSeries(series *contracts.PriceSeries) (float64, string) {
	if series.Len() < b.config.MinBars {
		return 0, fmt.Sprintf("history %d bars < %d", series.Len(), b.config.MinBars)
	}
	last, ok := series.Last()
	if !ok {
		return 0, "no bars"
	}
	if last.Close < b.config.MinPrice {
		return 0, fmt.Sprintf("price $%.2f < $%.2f", last.Close, b.config.MinPrice)
	}

	dv := averageDollarVolume(series, b.config.LiquidityWindow)
	if dv < b.config.MinDollarVolume {
		return 0, fmt.Sprintf("dollar volume $%.1fM < $%.1fM", dv/1e6, b.config.MinDollarVolume/1e6)
	}
	return dv, ""
}

// averageDollarVolume averages close × volume over the last window bars
func averageDollarVolume(series *contracts.PriceSeries, window int) float64 {
	bars := series.Bars
	if len(bars) > window {
		bars = bars[len(bars)-window:]
	}
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, bar := range bars {
		sum += bar.Close * float64(bar.Volume)
	}
	return sum / float64(len(bars))
}
