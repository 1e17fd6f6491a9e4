package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendLRU    = "lru"
	BackendRedis  = "redis"
)

// BackendConfig selects and parameterizes a Store implementation.
type BackendConfig struct {
	// Backend is one of memory, lru, redis (default memory)
	Backend string

	// TTL applies to every entry
	TTL time.Duration

	// SweepInterval enables the memory janitor
	SweepInterval time.Duration

	// Capacity bounds the lru backend
	Capacity int

	// Redis and Prefix configure the redis backend
	Redis  *redis.Client
	Prefix string

	// Options are passed to the memory and redis stores
	Options []Option
}

// NewStore builds the configured backend. name keeps stores of different
// value types apart in a shared Redis.
func NewStore[V any](cfg BackendConfig, name string) (Store[V], error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		opts := append([]Option{WithSweepInterval(cfg.SweepInterval)}, cfg.Options...)
		return NewMemory[V](cfg.TTL, opts...), nil
	case BackendLRU:
		if cfg.Capacity <= 0 {
			return nil, fmt.Errorf("lru backend needs a positive capacity (got %d)", cfg.Capacity)
		}
		return NewLRU[V](cfg.Capacity, cfg.TTL), nil
	case BackendRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis backend needs a client")
		}
		prefix := strings.TrimSuffix(cfg.Prefix, ":") + ":" + name + ":"
		return NewRedis[V](cfg.Redis, prefix, cfg.TTL, cfg.Options...), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
