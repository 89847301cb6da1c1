// Package seriestest builds deterministic synthetic price series for tests.
package seriestest

import (
	"time"

	"github.com/wonny/bullscan/internal/contracts"
)

// Start is the date of the first generated bar
var Start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// Volume is the constant volume of generated bars
const Volume = 1_000_000

// Day returns the date of bar i (consecutive calendar days)
func Day(i int) time.Time {
	return Start.AddDate(0, 0, i)
}

// FromCloses builds a series with OHLC all equal to close
func FromCloses(symbol string, closes []float64) *contracts.PriceSeries {
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.Bar{Date: Day(i), Open: c, High: c, Low: c, Close: c, Volume: Volume}
	}
	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}
}

// Compound grows start by dailyReturn for n bars
func Compound(symbol string, n int, start, dailyReturn float64) *contracts.PriceSeries {
	closes := make([]float64, n)
	price := start
	for i := range closes {
		closes[i] = price
		price *= 1 + dailyReturn
	}
	return FromCloses(symbol, closes)
}

// Flat keeps the price constant for n bars
func Flat(symbol string, n int, price float64) *contracts.PriceSeries {
	return Compound(symbol, n, price, 0)
}

// Alternating applies up and down returns in turn (up first) for n bars
func Alternating(symbol string, n int, start, up, down float64) *contracts.PriceSeries {
	closes := make([]float64, n)
	price := start
	for i := range closes {
		closes[i] = price
		if i%2 == 0 {
			price *= 1 + up
		} else {
			price *= 1 + down
		}
	}
	return FromCloses(symbol, closes)
}

// WithVolumes overrides volumes from the end of the series backwards
func WithVolumes(s *contracts.PriceSeries, tail ...int64) *contracts.PriceSeries {
	out := s.Head(s.Len())
	offset := len(out.Bars) - len(tail)
	for i, v := range tail {
		if offset+i >= 0 {
			out.Bars[offset+i].Volume = v
		}
	}
	return out
}
