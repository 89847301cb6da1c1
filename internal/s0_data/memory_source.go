package s0_data

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
)

// MemorySource serves preloaded series (tests, backtests over a snapshot)
type MemorySource struct {
	mu     sync.RWMutex
	series map[string]*contracts.PriceSeries
}

// NewMemorySource creates a source holding copies of the given series
func NewMemorySource(series ...*contracts.PriceSeries) *MemorySource {
	m := &MemorySource{series: make(map[string]*contracts.PriceSeries, len(series))}
	for _, s := range series {
		m.Put(s)
	}
	return m
}

// Put adds or replaces one symbol
func (m *MemorySource) Put(s *contracts.PriceSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[s.Symbol] = s.Head(s.Len())
}

// Symbols returns the loaded symbols in sorted order
func (m *MemorySource) Symbols(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.series))
	for sym := range m.series {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

// Fetch returns a copy of the bars dated within [from, to]
func (m *MemorySource) Fetch(ctx context.Context, symbol string, from, to time.Time) (*contracts.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	s, ok := m.series[symbol]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no series for %s", symbol)
	}

	out := &contracts.PriceSeries{Symbol: symbol}
	for _, b := range s.Bars {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out, nil
}
