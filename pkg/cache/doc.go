// Package cache provides the TTL query cache that sits between the prize
// service and the upstream API.
//
// Entries are indexed by a Signature derived deterministically from the
// upstream endpoint and the query parameters, so two logically equal queries
// always share an entry regardless of how their parameters were built.
//
// Three Store implementations are available:
//
//   - Memory: unbounded map with lazy expiry on read and an optional
//     periodic sweep. This is the default.
//   - LRU: bounded capacity with least-recently-used eviction on top of TTL.
//   - Redis: JSON encoded entries shared between processes, each key
//     carrying the TTL natively.
//
// # Basic Usage
//
//	store := cache.NewMemory[[]prize.Prize](time.Hour,
//		cache.WithSweepInterval(10*time.Minute),
//	)
//	defer store.Close()
//
//	sig := cache.Key{
//		Endpoint: "nobelPrizes",
//		Params:   url.Values{"nobelPrizeYear": {"2020"}},
//	}.Signature()
//
//	prizes, err := store.Get(ctx, sig)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from upstream, then store.Set(ctx, sig, prizes)
//	}
//
// # Expiry
//
// Every entry gets ExpiresAt = now + TTL when it is written. A lookup that
// finds an entry past its ExpiresAt evicts it and reports a miss. Without a
// sweep interval the Memory store only ever shrinks on such lookups or on
// Flush, so its size is bounded only by the number of distinct queries.
//
// # Metrics
//
//   - nobel_cache_hits_total{store} - Cache hits
//   - nobel_cache_misses_total{store} - Cache misses
//   - nobel_cache_sets_total{store} - Entries written
//   - nobel_cache_evictions_total{store, reason} - Entries removed (expired, flush, evicted)
//   - nobel_cache_errors_total{store, operation} - Backend errors
package cache
