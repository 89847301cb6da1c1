package contracts

import (
	"errors"
	"fmt"
)

// InsufficientDataError means a series is shorter than an indicator needs
type InsufficientDataError struct {
	Symbol    string
	Indicator string
	Required  int
	Got       int
}

func (e *InsufficientDataError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("insufficient data for %s: need %d bars, got %d", e.Indicator, e.Required, e.Got)
	}
	return fmt.Sprintf("insufficient data for %s on %s: need %d bars, got %d", e.Indicator, e.Symbol, e.Required, e.Got)
}

// InvalidWeightConfigError means indicator weights do not sum to the configured total
type InvalidWeightConfigError struct {
	Got  int
	Want int
}

func (e *InvalidWeightConfigError) Error() string {
	return fmt.Sprintf("indicator weights sum to %d, want %d", e.Got, e.Want)
}

// EmptyUniverseError means there was nothing to rank
type EmptyUniverseError struct{}

func (e *EmptyUniverseError) Error() string {
	return "no scored symbols to rank"
}

// ScoreOutOfRangeError means a computed score escaped [0,100]; always a defect
type ScoreOutOfRangeError struct {
	Symbol string
	Score  float64
}

func (e *ScoreOutOfRangeError) Error() string {
	return fmt.Sprintf("score %.4f for %s outside [0,100]", e.Score, e.Symbol)
}

// ErrReportNotFound is returned by a ReportStore with nothing to return
var ErrReportNotFound = errors.New("report not found")
