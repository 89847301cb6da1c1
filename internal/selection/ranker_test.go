package selection

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/pkg/logger"
)

func score(symbol string, s float64) *contracts.SignalScore {
	return &contracts.SignalScore{Symbol: symbol, Score: s}
}

func TestRank_OrderAndTieBreak(t *testing.T) {
	in := []*contracts.SignalScore{
		score("MSFT", 70),
		score("AAPL", 80),
		score("NVDA", 80),
		score("AMD", 70),
		score("KO", 40),
	}

	got, err := Rank(in, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "AAPL", got[0].Symbol)
	assert.Equal(t, "NVDA", got[1].Symbol)
	assert.Equal(t, "AMD", got[2].Symbol)
	for i, e := range got {
		assert.Equal(t, i+1, e.Rank)
	}

	// 입력 순서 유지
	assert.Equal(t, "MSFT", in[0].Symbol)
}

func TestRank_Deterministic(t *testing.T) {
	base := []*contracts.SignalScore{
		score("A", 50), score("B", 50), score("C", 61.5), score("D", 10), score("E", 50), score("F", 99),
	}
	want, err := Rank(base, 6)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]*contracts.SignalScore(nil), base...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Rank(shuffled, 6)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRank_NLargerThanInput(t *testing.T) {
	got, err := Rank([]*contracts.SignalScore{score("V", 1), score("MA", 2)}, 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "MA", got[0].Symbol)
}

func TestRank_Errors(t *testing.T) {
	_, err := Rank(nil, 5)
	var empty *contracts.EmptyUniverseError
	assert.True(t, errors.As(err, &empty))

	_, err = Rank([]*contracts.SignalScore{nil}, 5)
	assert.True(t, errors.As(err, &empty))

	_, err = Rank([]*contracts.SignalScore{score("X", 1)}, 0)
	require.Error(t, err)
	assert.False(t, errors.As(err, &empty))
}

func TestRanker_UsesTopN(t *testing.T) {
	r := NewRanker(1, logger.Nop())
	got, err := r.Rank([]*contracts.SignalScore{score("JPM", 55), score("XOM", 65)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "XOM", got[0].Symbol)
}
