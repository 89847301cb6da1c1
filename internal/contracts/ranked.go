package contracts

import "time"

// RankedEntry is one row of the top-N output
type RankedEntry struct {
	Rank int `json:"rank"` // 1-based
	SignalScore
}

// SkippedSymbol records a symbol excluded from a cycle
type SkippedSymbol struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// RankedReport is the terminal output of one scan cycle
// ⭐ SSOT: 스캔 사이클 → Reporter 전달
type RankedReport struct {
	RunID       string          `json:"run_id"`
	AsOf        time.Time       `json:"as_of"`
	GeneratedAt time.Time       `json:"generated_at"`
	StrategyID  string          `json:"strategy_id"`
	ConfigHash  string          `json:"config_hash"`
	Entries     []RankedEntry   `json:"entries"`
	Skipped     []SkippedSymbol `json:"skipped,omitempty"`
}

// Top returns the rank-1 entry
func (r *RankedReport) Top() (RankedEntry, bool) {
	if len(r.Entries) == 0 {
		return RankedEntry{}, false
	}
	return r.Entries[0], true
}

// Symbols returns ranked symbols in order
func (r *RankedReport) Symbols() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Symbol
	}
	return out
}
