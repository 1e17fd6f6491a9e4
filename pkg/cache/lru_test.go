package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLRU_SetAndGet(t *testing.T) {
	s := NewLRU[string](10, time.Hour)
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Errorf("Get = (%q, %v), want (v, nil)", got, err)
	}
}

func TestLRU_CapacityEviction(t *testing.T) {
	s := NewLRU[int](2, time.Hour)
	defer s.Close()
	ctx := context.Background()

	_ = s.Set(ctx, "a", 1)
	_ = s.Set(ctx, "b", 2)
	_, _ = s.Get(ctx, "a") // a becomes most recently used
	_ = s.Set(ctx, "c", 3) // evicts b

	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected b to be evicted, got %v", err)
	}
	if v, err := s.Get(ctx, "a"); err != nil || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, nil)", v, err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestLRU_Expiry(t *testing.T) {
	s := NewLRU[int](0, 20*time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	_ = s.Set(ctx, "k", 1)
	time.Sleep(60 * time.Millisecond)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestLRU_Flush(t *testing.T) {
	s := NewLRU[int](0, time.Hour)
	ctx := context.Background()

	_ = s.Set(ctx, "a", 1)
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Flush, got %v", err)
	}
}

func TestLRU_EvictionReasons(t *testing.T) {
	s := NewLRU[int](2, time.Hour)
	defer s.Close()
	ctx := context.Background()

	flushed := CacheEvictions.WithLabelValues(storeLRU, "flush")
	evicted := CacheEvictions.WithLabelValues(storeLRU, "evicted")
	flushBefore := promtest.ToFloat64(flushed)
	evictBefore := promtest.ToFloat64(evicted)

	_ = s.Set(ctx, "a", 1)
	_ = s.Set(ctx, "b", 2)
	_ = s.Set(ctx, "c", 3) // evicts a

	if got := promtest.ToFloat64(evicted) - evictBefore; got != 1 {
		t.Errorf("evicted delta = %v, want 1", got)
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if got := promtest.ToFloat64(flushed) - flushBefore; got != 2 {
		t.Errorf("flush delta = %v, want 2", got)
	}
	if got := promtest.ToFloat64(evicted) - evictBefore; got != 1 {
		t.Errorf("evicted delta after Flush = %v, want 1", got)
	}
}
