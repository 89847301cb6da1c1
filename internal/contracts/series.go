package contracts

import (
	"fmt"
	"time"
)

// Bar is one daily OHLCV observation
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an ordered daily history for one symbol
// ⭐ SSOT: 데이터 소스 → 지표 계산 전달 단위
// 생성 후 변경하지 않음. 백테스트는 Window/Head 로 새 슬라이스를 만든다.
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// NewPriceSeries validates bars and returns an owned copy
func NewPriceSeries(symbol string, bars []Bar) (*PriceSeries, error) {
	s := &PriceSeries{Symbol: symbol, Bars: append([]Bar(nil), bars...)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ordering and price sanity
func (s *PriceSeries) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("series symbol is empty")
	}
	for i, b := range s.Bars {
		if b.Close <= 0 {
			return fmt.Errorf("%s: non-positive close %.4f on %s", s.Symbol, b.Close, b.Date.Format("2006-01-02"))
		}
		if b.Volume < 0 {
			return fmt.Errorf("%s: negative volume on %s", s.Symbol, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !b.Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("%s: dates not strictly increasing at %s", s.Symbol, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Len returns the number of bars
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Last returns the most recent bar
func (s *PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes returns close prices oldest first
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns volumes oldest first as float64
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = float64(b.Volume)
	}
	return out
}

// IndexOn returns the index of the bar dated exactly on day, or -1
func (s *PriceSeries) IndexOn(day time.Time) int {
	key := day.Format("2006-01-02")
	for i := len(s.Bars) - 1; i >= 0; i-- {
		if s.Bars[i].Date.Format("2006-01-02") == key {
			return i
		}
	}
	return -1
}

// Window returns a copy holding only bars dated on or before asOf
func (s *PriceSeries) Window(asOf time.Time) *PriceSeries {
	n := 0
	for n < len(s.Bars) && !s.Bars[n].Date.After(asOf) {
		n++
	}
	return s.Head(n)
}

// Head returns a copy of the first n bars
func (s *PriceSeries) Head(n int) *PriceSeries {
	if n > len(s.Bars) {
		n = len(s.Bars)
	}
	if n < 0 {
		n = 0
	}
	return &PriceSeries{Symbol: s.Symbol, Bars: append([]Bar(nil), s.Bars[:n]...)}
}
