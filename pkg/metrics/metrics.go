// Package metrics exposes the Prometheus registry used by the prize cache.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, service, api) and registered via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry every package registers with.
var Registry = prometheus.DefaultRegisterer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Upstream Metrics (pkg/client):
//   - nobel_upstream_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - nobel_upstream_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - nobel_upstream_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Pacing Metrics (pkg/ratelimit):
//   - nobel_upstream_throttles_total (Counter): Requests delayed by the limiter
//   - nobel_upstream_throttle_wait_seconds (Histogram): Time spent waiting for the limiter
//
// Cache Metrics (pkg/cache):
//   - nobel_cache_hits_total{store} (Counter): Hits by store (memory, lru, redis)
//   - nobel_cache_misses_total{store} (Counter): Misses, absent or expired
//   - nobel_cache_sets_total{store} (Counter): Entries written
//   - nobel_cache_evictions_total{store, reason} (Counter): Removals (expired, flush, evicted)
//   - nobel_cache_errors_total{store, operation} (Counter): Backend errors
//
// Service Metrics (pkg/service):
//   - nobel_service_upstream_fetches_total{endpoint, result} (Counter): Fetches caused by misses
//   - nobel_service_coalesced_total{endpoint} (Counter): Misses served by an in-flight fetch
//
// HTTP Metrics (pkg/api):
//   - nobel_http_requests_total{route, status} (Counter): Served requests
//   - nobel_http_request_duration_seconds{route} (Histogram): Handler latency
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(nobel_cache_hits_total[5m])) /
//   (sum(rate(nobel_cache_hits_total[5m])) + sum(rate(nobel_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(nobel_upstream_errors_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(nobel_upstream_request_duration_seconds_bucket[5m]))
