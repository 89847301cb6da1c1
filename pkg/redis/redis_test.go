package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/pkg/config"
)

type payload struct {
	Symbol string  `json:"symbol"`
	Close  float64 `json:"close"`
}

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, client.Enabled())

	cache := NewCache(client, "test")
	var dest payload
	found, err := cache.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(context.Background(), "k", payload{}, time.Minute))
	assert.NoError(t, cache.Delete(context.Background(), "k"))
}

func TestCache_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(rdb), "bullscan")

	mock.ExpectGet("bullscan:cache:AAPL").SetVal(`{"symbol":"AAPL","close":187.5}`)

	var got payload
	found, err := cache.Get(context.Background(), "AAPL", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Symbol: "AAPL", Close: 187.5}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Miss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(rdb), "bullscan")

	mock.ExpectGet("bullscan:cache:MSFT").RedisNil()

	var got payload
	found, err := cache.Get(context.Background(), "MSFT", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(rdb), "bullscan")

	mock.ExpectGet("bullscan:cache:NVDA").SetErr(errors.New("connection reset"))

	var got payload
	_, err := cache.Get(context.Background(), "NVDA", &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCache_Set(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(Wrap(rdb), "bullscan")

	mock.ExpectSet("bullscan:cache:KO", []byte(`{"symbol":"KO","close":61}`), TTLDaily).SetVal("OK")

	require.NoError(t, cache.Set(context.Background(), "KO", payload{Symbol: "KO", Close: 61}, TTLDaily))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeriesKey(t *testing.T) {
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "series:SPY:20240102:20240329", SeriesKey("SPY", from, to))
}
