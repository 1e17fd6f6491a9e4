package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// flushBatchSize bounds the number of keys removed per DEL command.
const flushBatchSize = 500

// Redis is a Store backed by Redis. Entries are JSON encoded under a key
// prefix and carry the TTL natively, so nothing outlives its expiry even if
// the process dies before Flush.
type Redis[V any] struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	clock  clockwork.Clock
}

var _ Store[int] = (*Redis[int])(nil)

// NewRedis creates a Redis store. Keys are namespaced with prefix so Flush
// only removes this store's entries.
func NewRedis[V any](redisClient *redis.Client, prefix string, ttl time.Duration, opts ...Option) *Redis[V] {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Redis[V]{
		redis:  redisClient,
		prefix: prefix,
		ttl:    normalizeTTL(ttl),
		clock:  o.clock,
	}
}

func (r *Redis[V]) key(sig Signature) string {
	return r.prefix + string(sig)
}

// Get retrieves the entry for sig.
// Returns ErrCacheMiss if the key doesn't exist or the entry is expired.
func (r *Redis[V]) Get(ctx context.Context, sig Signature) (V, error) {
	var zero V

	data, err := r.redis.Get(ctx, r.key(sig)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(storeRedis).Inc()
			return zero, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(storeRedis, "get").Inc()
		return zero, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry[V]
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues(storeRedis, "get").Inc()
		return zero, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.ExpiredAt(r.clock.Now()) {
		_ = r.redis.Del(ctx, r.key(sig)).Err()
		CacheEvictions.WithLabelValues(storeRedis, "expired").Inc()
		CacheMisses.WithLabelValues(storeRedis).Inc()
		return zero, ErrCacheMiss
	}

	CacheHits.WithLabelValues(storeRedis).Inc()
	return entry.Value, nil
}

// Set stores the value with ExpiresAt = now + TTL.
func (r *Redis[V]) Set(ctx context.Context, sig Signature, value V) error {
	entry := Entry[V]{
		Value:     value,
		ExpiresAt: r.clock.Now().Add(r.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues(storeRedis, "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.redis.Set(ctx, r.key(sig), data, r.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(storeRedis, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSets.WithLabelValues(storeRedis).Inc()
	return nil
}

// Flush deletes every key under the store prefix.
func (r *Redis[V]) Flush(ctx context.Context) error {
	iter := r.redis.Scan(ctx, 0, r.prefix+"*", flushBatchSize).Iterator()

	batch := make([]string, 0, flushBatchSize)
	removed := 0
	del := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.redis.Del(ctx, batch...).Err(); err != nil {
			CacheErrors.WithLabelValues(storeRedis, "flush").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == flushBatchSize {
			if err := del(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues(storeRedis, "flush").Inc()
		return fmt.Errorf("redis scan: %w", err)
	}
	if err := del(); err != nil {
		return err
	}

	CacheEvictions.WithLabelValues(storeRedis, "flush").Add(float64(removed))
	return nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (r *Redis[V]) Close() error {
	return nil
}
