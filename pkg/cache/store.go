package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/nobel-prize-cache/pkg/logging"
)

var (
	// ErrCacheMiss indicates the requested key was not found or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry could not be decoded
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultTTL applies when a store is created without a positive TTL.
const DefaultTTL = time.Hour

// Store is a TTL key/value store for query results. Every entry written by
// Set expires TTL after the write; there is no per-entry override.
type Store[V any] interface {
	// Get returns the value for sig, or ErrCacheMiss when the entry is
	// absent or expired. Expired entries are evicted by the lookup.
	Get(ctx context.Context, sig Signature) (V, error)

	// Set creates or replaces the entry for sig.
	Set(ctx context.Context, sig Signature, value V) error

	// Flush removes all entries.
	Flush(ctx context.Context) error

	// Close releases background resources. The store must not be used
	// afterwards.
	Close() error
}

type options struct {
	clock         clockwork.Clock
	sweepInterval time.Duration
	logger        zerolog.Logger
}

func defaultOptions() options {
	return options{
		clock:  clockwork.NewRealClock(),
		logger: logging.NewLogger(logging.ComponentCache),
	}
}

// Option configures a Memory store.
type Option func(*options)

// WithClock replaces the wall clock, e.g. with clockwork.NewFakeClock() in tests.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithSweepInterval enables a background sweep that removes expired entries
// every d. A non-positive d disables it and leaves only lazy expiry.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		o.sweepInterval = d
	}
}

// WithLogger sets the logger used for sweep events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
