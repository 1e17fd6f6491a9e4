package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory[[]string](time.Hour)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []string{"a", "b"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Get = %v, want [a b]", got)
	}
}

func TestMemory_Get_CacheMiss(t *testing.T) {
	m := NewMemory[int](time.Hour)
	defer m.Close()

	_, err := m.Get(context.Background(), "missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemory_LazyExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory[int](time.Minute, WithClock(clock))
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", 7); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(time.Minute)
	if v, err := m.Get(ctx, "k"); err != nil || v != 7 {
		t.Fatalf("Get at TTL boundary = (%v, %v), want (7, nil)", v, err)
	}

	clock.Advance(time.Nanosecond)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss after TTL, got %v", err)
	}

	// The expired entry was evicted by the lookup
	if n := m.Len(); n != 0 {
		t.Errorf("Len() = %d after lazy eviction, want 0", n)
	}
}

func TestMemory_SetReplacesEntry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory[string](time.Minute, WithClock(clock))
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "k", "old")
	clock.Advance(50 * time.Second)
	_ = m.Set(ctx, "k", "new")
	clock.Advance(50 * time.Second)

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "new" {
		t.Errorf("Get = %q, want %q", got, "new")
	}
}

func TestMemory_ExpiredEntriesStayUntilRead(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory[int](time.Second, WithClock(clock))
	defer m.Close()
	ctx := context.Background()

	for _, k := range []Signature{"a", "b", "c"} {
		_ = m.Set(ctx, k, 1)
	}
	clock.Advance(time.Hour)

	// No sweep configured: only lazy expiry shrinks the map
	if n := m.Len(); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
}

func TestMemory_Sweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory[int](time.Second, WithClock(clock), WithSweepInterval(time.Minute))
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "a", 1)
	_ = m.Set(ctx, "b", 2)

	clock.Advance(time.Minute + time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for m.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep did not remove expired entries, Len() = %d", m.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemory_Flush(t *testing.T) {
	m := NewMemory[int](time.Hour)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "a", 1)
	_ = m.Set(ctx, "b", 2)

	if err := m.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Flush, got %v", err)
	}
	if n := m.Len(); n != 0 {
		t.Errorf("Len() = %d after Flush, want 0", n)
	}
}

func TestMemory_DefaultTTL(t *testing.T) {
	m := NewMemory[int](0)
	defer m.Close()

	if m.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", m.TTL(), DefaultTTL)
	}
}

func TestMemory_CloseTwice(t *testing.T) {
	m := NewMemory[int](time.Hour, WithSweepInterval(time.Millisecond))
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory[int](time.Hour, WithSweepInterval(time.Millisecond))
	defer m.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig := Signature([]string{"a", "b", "c"}[i%3])
			_ = m.Set(ctx, sig, i)
			_, _ = m.Get(ctx, sig)
		}(i)
	}
	wg.Wait()

	if n := m.Len(); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
}
