// Package app assembles the prize data service from a resolved Config. Both
// binaries start from here.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/nobel-prize-cache/pkg/cache"
	"github.com/Sternrassler/nobel-prize-cache/pkg/client"
	"github.com/Sternrassler/nobel-prize-cache/pkg/config"
	"github.com/Sternrassler/nobel-prize-cache/pkg/logging"
	"github.com/Sternrassler/nobel-prize-cache/pkg/pagination"
	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
	"github.com/Sternrassler/nobel-prize-cache/pkg/ratelimit"
	"github.com/Sternrassler/nobel-prize-cache/pkg/service"
)

// App owns the long-lived collaborators of one process.
type App struct {
	Config  config.Config
	Client  *client.Client
	Service *service.Service
	Batch   *pagination.BatchFetcher

	redis *redis.Client
}

// New builds and initializes the service described by cfg.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.NewLogger(logging.ComponentApp)

	burst := max(1, int(math.Ceil(cfg.RequestsPerSecond)))
	limiter := ratelimit.NewLimiter(cfg.RequestsPerSecond, burst, logging.NewLogger(logging.ComponentClient))

	c, err := client.New(client.Config{
		BaseURL:   cfg.APIBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
		Limiter:   limiter,
	})
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	a := &App{Config: cfg, Client: c}

	backend := cache.BackendConfig{
		Backend:       cfg.CacheBackend,
		TTL:           cfg.CacheTTL,
		SweepInterval: cfg.CacheSweepInterval,
		Capacity:      cfg.CacheCapacity,
		Prefix:        cfg.RedisPrefix,
	}

	if cfg.CacheBackend == config.BackendRedis {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			_ = a.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		backend.Redis = a.redis
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	}

	prizes, err := cache.NewStore[[]prize.Prize](backend, "prizes")
	if err != nil {
		return nil, a.abort(err)
	}
	laureates, err := cache.NewStore[json.RawMessage](backend, "laureates")
	if err != nil {
		return nil, a.abort(errors.Join(err, prizes.Close()))
	}
	counts, err := cache.NewStore[int](backend, "counts")
	if err != nil {
		return nil, a.abort(errors.Join(err, prizes.Close(), laureates.Close()))
	}

	svc, err := service.New(service.Config{
		Fetcher:         c,
		PrizeCache:      prizes,
		LaureateCache:   laureates,
		CountCache:      counts,
		StatsSampleSize: cfg.StatsSampleSize,
		Coalesce:        cfg.Coalesce,
	})
	if err != nil {
		return nil, a.abort(err)
	}
	if err := svc.Init(ctx); err != nil {
		return nil, a.abort(err)
	}
	a.Service = svc

	a.Batch = pagination.NewBatchFetcher(svc, pagination.Config{
		PageSize:       cfg.PageSize,
		MaxConcurrency: cfg.MaxConcurrency,
		Timeout:        cfg.RequestTimeout,
	})

	logger.Info().
		Str("api_base_url", cfg.APIBaseURL).
		Str("cache_backend", cfg.CacheBackend).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Prize data service ready")

	return a, nil
}

// Close flushes the caches and releases connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Service != nil {
		errs = append(errs, a.Service.Close(ctx))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

func (a *App) abort(err error) error {
	if a.redis != nil {
		err = errors.Join(err, a.redis.Close())
	}
	return fmt.Errorf("build caches: %w", err)
}
