package commands

import (
	"context"
	"fmt"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/internal/external/yahoo"
	"github.com/wonny/bullscan/internal/s0_data"
	"github.com/wonny/bullscan/internal/s0_data/cache"
	"github.com/wonny/bullscan/internal/strategyconfig"
	"github.com/wonny/bullscan/pkg/config"
	"github.com/wonny/bullscan/pkg/database"
	"github.com/wonny/bullscan/pkg/httputil"
	"github.com/wonny/bullscan/pkg/logger"
	"github.com/wonny/bullscan/pkg/metrics"
	"github.com/wonny/bullscan/pkg/redis"
)

// Series source names accepted by --source
const (
	sourceYahoo = "yahoo"
	sourceDB    = "db"
)

// app bundles the process-wide dependencies every command starts from
// ⭐ SSOT: 커맨드 공통 의존성 생성은 여기서만
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder
	http    *httputil.Client
	db      *database.DB  // nil when DATABASE_URL is unset
	redis   *redis.Client // nil when Redis could not be reached
}

// bootstrap loads env config and opens optional backends.
// requireDB turns a missing or unreachable database into an error.
func bootstrap(ctx context.Context, requireDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		http:    httputil.New(cfg.MarketData, log),
	}

	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		switch {
		case err != nil && requireDB:
			return nil, fmt.Errorf("database: %w", err)
		case err != nil:
			log.WithError(err).Warn("Database unavailable, continuing without persistence")
		default:
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, fmt.Errorf("database migrate: %w", err)
			}
			a.db = db
		}
	} else if requireDB {
		return nil, fmt.Errorf("DATABASE_URL is required for this command")
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, series cache disabled")
	} else {
		a.redis = rc
	}

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *app) strategyPath() string {
	if strategyFile != "" {
		return strategyFile
	}
	return a.cfg.StrategyPath
}

func (a *app) loadStrategy() (*strategyconfig.Config, error) {
	cfg, _, err := strategyconfig.Load(a.strategyPath())
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	return cfg, nil
}

func (a *app) yahoo() *yahoo.Client {
	return yahoo.NewClient(a.http, a.cfg.MarketData.BaseURL, a.log)
}

// source resolves --source, wrapped in the Redis read-through cache when enabled
func (a *app) source(name string) (contracts.SeriesSource, error) {
	var src contracts.SeriesSource
	switch name {
	case sourceYahoo, "":
		src = a.yahoo()
	case sourceDB:
		if a.db == nil {
			return nil, fmt.Errorf("--source db needs DATABASE_URL")
		}
		src = s0_data.NewPriceRepository(a.db.Pool)
	default:
		return nil, fmt.Errorf("unknown source %q (want %s or %s)", name, sourceYahoo, sourceDB)
	}

	if a.redis != nil && a.redis.Enabled() {
		src = cache.NewCachedSource(src, redis.NewCache(a.redis, "bullscan"), a.cfg.Redis.SeriesTTL, a.log)
	}
	return src, nil
}
