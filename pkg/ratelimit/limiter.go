// Package ratelimit paces outbound requests to the upstream prize API.
//
// The limiter only delays requests so the service stays a polite client of a
// public API. It never retries or drops a request.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for outbound pacing.
var (
	upstreamThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nobel_upstream_throttles_total",
		Help: "Total number of upstream requests delayed by the rate limiter",
	})

	upstreamThrottleWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nobel_upstream_throttle_wait_seconds",
		Help:    "Time spent waiting for the rate limiter before an upstream request",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)

// throttleThreshold is the wait above which a request counts as throttled.
const throttleThreshold = time.Millisecond

// Limiter gates outbound requests with a token bucket.
// A nil *Limiter, or one built with a non-positive rate, never waits.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewLimiter allows rps requests per second with the given burst. A burst
// below 1 is raised to 1.
func NewLimiter(rps float64, burst int, logger zerolog.Logger) *Limiter {
	if rps <= 0 {
		return &Limiter{logger: logger}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Enabled reports whether the limiter actually paces requests.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if !l.Enabled() {
		return nil
	}

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	if waited := time.Since(start); waited > throttleThreshold {
		upstreamThrottlesTotal.Inc()
		upstreamThrottleWaitSeconds.Observe(waited.Seconds())
		l.logger.Debug().
			Dur("wait_duration", waited).
			Msg("Upstream request throttled")
	}
	return nil
}
