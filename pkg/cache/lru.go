package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU is a bounded Store: once capacity is reached the least recently used
// entry is evicted to make room. Entries also expire after the TTL.
type LRU[V any] struct {
	data *expirable.LRU[Signature, V]
	ttl  time.Duration

	// flushMu serializes Flush; flushing relabels the evictions Purge reports.
	flushMu  sync.Mutex
	flushing atomic.Bool
}

var _ Store[int] = (*LRU[int])(nil)

// NewLRU creates an LRU store. A capacity of zero means unlimited size.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	ttl = normalizeTTL(ttl)
	s := &LRU[V]{ttl: ttl}
	s.data = expirable.NewLRU[Signature, V](capacity, s.onEvict, ttl)
	return s
}

func (s *LRU[V]) onEvict(_ Signature, _ V) {
	reason := "evicted"
	if s.flushing.Load() {
		reason = "flush"
	}
	CacheEvictions.WithLabelValues(storeLRU, reason).Inc()
}

// Get returns the live value for sig or ErrCacheMiss.
func (s *LRU[V]) Get(_ context.Context, sig Signature) (V, error) {
	v, ok := s.data.Get(sig)
	if !ok {
		CacheMisses.WithLabelValues(storeLRU).Inc()
		var zero V
		return zero, ErrCacheMiss
	}
	CacheHits.WithLabelValues(storeLRU).Inc()
	return v, nil
}

// Set adds or replaces the entry for sig, resetting its TTL.
func (s *LRU[V]) Set(_ context.Context, sig Signature, value V) error {
	s.data.Add(sig, value)
	CacheSets.WithLabelValues(storeLRU).Inc()
	return nil
}

// Flush drops every entry.
func (s *LRU[V]) Flush(_ context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.flushing.Store(true)
	s.data.Purge()
	s.flushing.Store(false)
	return nil
}

// Close is a no-op. The expirable LRU starts a cleanup goroutine that it
// offers no way to stop, so it lives until the process exits.
func (s *LRU[V]) Close() error {
	return nil
}

// Len reports the number of live entries.
func (s *LRU[V]) Len() int {
	return s.data.Len()
}
