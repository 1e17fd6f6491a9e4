package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Memory is an unbounded in-process Store. Expired entries are removed when
// a lookup finds them and, if a sweep interval is configured, by a background
// janitor. There is no capacity limit.
type Memory[V any] struct {
	mu       sync.Mutex
	entries  map[Signature]Entry[V]
	ttl      time.Duration
	clock    clockwork.Clock
	logger   zerolog.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

var _ Store[int] = (*Memory[int])(nil)

// NewMemory creates a Memory store with the given TTL and starts the janitor
// when WithSweepInterval is set.
func NewMemory[V any](ttl time.Duration, opts ...Option) *Memory[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memory[V]{
		entries: make(map[Signature]Entry[V]),
		ttl:     normalizeTTL(ttl),
		clock:   o.clock,
		logger:  o.logger,
		stop:    make(chan struct{}),
	}

	if o.sweepInterval > 0 {
		ticker := m.clock.NewTicker(o.sweepInterval)
		go m.janitor(ticker)
	}

	return m
}

// Get returns the live value for sig or ErrCacheMiss.
func (m *Memory[V]) Get(_ context.Context, sig Signature) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	entry, found := m.entries[sig]
	if !found {
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return zero, ErrCacheMiss
	}

	if entry.ExpiredAt(m.clock.Now()) {
		delete(m.entries, sig)
		CacheEvictions.WithLabelValues(storeMemory, "expired").Inc()
		CacheMisses.WithLabelValues(storeMemory).Inc()
		return zero, ErrCacheMiss
	}

	CacheHits.WithLabelValues(storeMemory).Inc()
	return entry.Value, nil
}

// Set replaces the entry for sig with a fresh one expiring TTL from now.
func (m *Memory[V]) Set(_ context.Context, sig Signature, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[sig] = Entry[V]{
		Value:     value,
		ExpiresAt: m.clock.Now().Add(m.ttl),
	}
	CacheSets.WithLabelValues(storeMemory).Inc()
	return nil
}

// Flush drops every entry.
func (m *Memory[V]) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	CacheEvictions.WithLabelValues(storeMemory, "flush").Add(float64(len(m.entries)))
	m.entries = make(map[Signature]Entry[V])
	return nil
}

// Close stops the janitor. It is safe to call more than once.
func (m *Memory[V]) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	return nil
}

// Len reports the number of stored entries, including expired ones that have
// not been evicted yet.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// TTL returns the uniform time-to-live applied by Set.
func (m *Memory[V]) TTL() time.Duration {
	return m.ttl
}

func (m *Memory[V]) janitor(ticker clockwork.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if n := m.deleteExpired(); n > 0 {
				m.logger.Debug().Int("evicted", n).Msg("Swept expired cache entries")
			}
		case <-m.stop:
			return
		}
	}
}

// deleteExpired removes every stale entry and returns how many were removed.
func (m *Memory[V]) deleteExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	removed := 0
	for sig, entry := range m.entries {
		if entry.ExpiredAt(now) {
			delete(m.entries, sig)
			removed++
		}
	}
	if removed > 0 {
		CacheEvictions.WithLabelValues(storeMemory, "expired").Add(float64(removed))
	}
	return removed
}
