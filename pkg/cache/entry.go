package cache

import (
	"time"
)

// Entry is a cached value together with its absolute expiry time. Entries are
// replaced on refresh, never mutated in place.
type Entry[V any] struct {
	// Value is the cached result set
	Value V `json:"value"`

	// ExpiresAt is when the entry becomes stale
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the entry is stale at the given instant.
func (e Entry[V]) ExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// TTLAt returns the time left until expiration, or 0 if already expired.
func (e Entry[V]) TTLAt(now time.Time) time.Duration {
	ttl := e.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}
