package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store labels used on every cache metric.
const (
	storeMemory = "memory"
	storeLRU    = "lru"
	storeRedis  = "redis"
)

var (
	// CacheHits tracks cache hits by store
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nobel_cache_hits_total",
			Help: "Total number of query cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks cache misses (absent or expired) by store
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nobel_cache_misses_total",
			Help: "Total number of query cache misses",
		},
		[]string{"store"},
	)

	// CacheSets tracks entries written
	CacheSets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nobel_cache_sets_total",
			Help: "Total number of query cache writes",
		},
		[]string{"store"},
	)

	// CacheEvictions tracks removed entries by reason
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nobel_cache_evictions_total",
			Help: "Total number of query cache evictions",
		},
		[]string{"store", "reason"}, // "expired", "flush", "evicted"
	)

	// CacheErrors tracks backend errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nobel_cache_errors_total",
			Help: "Total number of query cache backend errors",
		},
		[]string{"store", "operation"}, // "get", "set", "flush"
	)
)
