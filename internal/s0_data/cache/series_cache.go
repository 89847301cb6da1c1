package cache

import (
	"context"
	"time"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/pkg/logger"
	"github.com/wonny/bullscan/pkg/redis"
)

// CachedSource decorates a SeriesSource with a Redis read-through cache.
// Cache failures degrade to the inner source; they never fail a fetch.
type CachedSource struct {
	inner  contracts.SeriesSource
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewCachedSource wraps inner. ttl <= 0 falls back to redis.TTLMedium.
func NewCachedSource(inner contracts.SeriesSource, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &CachedSource{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.Component("series_cache"),
		now:    time.Now,
	}
}

// Fetch implements contracts.SeriesSource
func (c *CachedSource) Fetch(ctx context.Context, symbol string, from, to time.Time) (*contracts.PriceSeries, error) {
	key := redis.SeriesKey(symbol, from, to)

	var cached contracts.PriceSeries
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Series cache read failed")
	}
	if found && cached.Len() > 0 {
		c.logger.WithField("symbol", symbol).Debug("Series cache hit")
		return &cached, nil
	}

	series, err := c.inner.Fetch(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, series, c.ttlFor(to)); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Series cache write failed")
	}
	return series, nil
}

// ttlFor keeps ranges that ended before today for at least a day: their bars are settled
func (c *CachedSource) ttlFor(to time.Time) time.Duration {
	today := c.now().UTC().Truncate(24 * time.Hour)
	if to.Before(today) && c.ttl < redis.TTLDaily {
		return redis.TTLDaily
	}
	return c.ttl
}
