package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/contracts/seriestest"
	"github.com/wonny/bullscan/pkg/logger"
	"github.com/wonny/bullscan/pkg/redis"
)

type countingSource struct {
	series *contracts.PriceSeries
	err    error
	calls  int
}

func (s *countingSource) Fetch(ctx context.Context, symbol string, from, to time.Time) (*contracts.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

var (
	from = seriestest.Day(0)
	to   = seriestest.Day(4)
	key  = "bullscan:cache:series:AAPL:20240102:20240106"
)

// openRange pins "today" to the last requested day so the configured ttl applies
func openRange(src *CachedSource) *CachedSource {
	src.now = func() time.Time { return to.Add(15 * time.Hour) }
	return src
}

func TestCachedSource_MissThenStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	series := seriestest.Compound("AAPL", 5, 100, 0.01)
	data, err := json.Marshal(series)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, data, time.Hour).SetVal("OK")

	inner := &countingSource{series: series}
	src := openRange(NewCachedSource(inner, redis.NewCache(redis.Wrap(rdb), "bullscan"), time.Hour, logger.Nop()))

	got, err := src.Fetch(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	assert.Same(t, series, got)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	series := seriestest.Compound("AAPL", 5, 100, 0.01)
	data, err := json.Marshal(series)
	require.NoError(t, err)

	mock.ExpectGet(key).SetVal(string(data))

	inner := &countingSource{}
	src := NewCachedSource(inner, redis.NewCache(redis.Wrap(rdb), "bullscan"), time.Hour, logger.Nop())

	got, err := src.Fetch(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	assert.Equal(t, 0, inner.calls)
	assert.Equal(t, series.Closes(), got.Closes())
	assert.True(t, series.Bars[4].Date.Equal(got.Bars[4].Date))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	series := seriestest.Flat("AAPL", 5, 10)
	data, err := json.Marshal(series)
	require.NoError(t, err)

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, data, redis.TTLMedium).SetErr(errors.New("connection refused"))

	inner := &countingSource{series: series}
	src := openRange(NewCachedSource(inner, redis.NewCache(redis.Wrap(rdb), "bullscan"), 0, logger.Nop()))

	got, err := src.Fetch(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	assert.Same(t, series, got)
}

func TestCachedSource_InnerError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet(key).RedisNil()

	inner := &countingSource{err: errors.New("upstream 503")}
	src := NewCachedSource(inner, redis.NewCache(redis.Wrap(rdb), "bullscan"), time.Hour, logger.Nop())

	_, err := src.Fetch(context.Background(), "AAPL", from, to)
	assert.EqualError(t, err, "upstream 503")
}

func TestCachedSource_SettledRangeKeptForADay(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	series := seriestest.Compound("AAPL", 5, 100, 0.01)
	data, err := json.Marshal(series)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, data, redis.TTLDaily).SetVal("OK")

	src := NewCachedSource(&countingSource{series: series}, redis.NewCache(redis.Wrap(rdb), "bullscan"), time.Hour, logger.Nop())
	src.now = func() time.Time { return to.AddDate(0, 0, 3) }

	_, err = src.Fetch(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
