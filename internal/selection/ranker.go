package selection

import (
	"fmt"
	"sort"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/pkg/logger"
)

// Ranker orders scored symbols and keeps the top N
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	topN   int
	logger *logger.Logger
}

// NewRanker creates a ranker that keeps topN entries
func NewRanker(topN int, log *logger.Logger) *Ranker {
	return &Ranker{
		topN:   topN,
		logger: log.Component("selection"),
	}
}

// Rank applies the configured top N
func (r *Ranker) Rank(scores []*contracts.SignalScore) ([]contracts.RankedEntry, error) {
	ranked, err := Rank(scores, r.topN)
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(map[string]interface{}{
		"candidates": len(scores),
		"selected":   len(ranked),
		"top_symbol": ranked[0].Symbol,
		"top_score":  ranked[0].Score,
	}).Info("Ranking completed")

	return ranked, nil
}

// Rank sorts by score descending with symbol ascending as tie-break, assigns
// 1-based ranks and returns the first min(n, len) entries. Input is not modified.
func Rank(scores []*contracts.SignalScore, n int) ([]contracts.RankedEntry, error) {
	if len(scores) == 0 {
		return nil, &contracts.EmptyUniverseError{}
	}
	if n < 1 {
		return nil, fmt.Errorf("top n must be >= 1, got %d", n)
	}

	sorted := make([]*contracts.SignalScore, 0, len(scores))
	for _, s := range scores {
		if s != nil {
			sorted = append(sorted, s)
		}
	}
	if len(sorted) == 0 {
		return nil, &contracts.EmptyUniverseError{}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	if n > len(sorted) {
		n = len(sorted)
	}

	out := make([]contracts.RankedEntry, n)
	for i := 0; i < n; i++ {
		out[i] = contracts.RankedEntry{Rank: i + 1, SignalScore: *sorted[i]}
	}
	return out, nil
}
