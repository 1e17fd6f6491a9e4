package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLimiter_Disabled(t *testing.T) {
	tests := []struct {
		name    string
		limiter *Limiter
	}{
		{"nil limiter", nil},
		{"zero rate", NewLimiter(0, 5, zerolog.Nop())},
		{"negative rate", NewLimiter(-1, 5, zerolog.Nop())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.limiter.Enabled() {
				t.Error("Enabled() = true, want false")
			}

			start := time.Now()
			for i := 0; i < 100; i++ {
				if err := tt.limiter.Wait(context.Background()); err != nil {
					t.Fatalf("Wait failed: %v", err)
				}
			}
			if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
				t.Errorf("disabled limiter waited %v", elapsed)
			}
		})
	}
}

func TestLimiter_Paces(t *testing.T) {
	l := NewLimiter(20, 1, zerolog.Nop())
	if !l.Enabled() {
		t.Fatal("Enabled() = false, want true")
	}

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}

	// 1 burst token + 4 tokens at 20/s is at least ~200ms
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("5 requests at 20 rps took %v, expected pacing", elapsed)
	}
}

func TestLimiter_ContextCancelled(t *testing.T) {
	l := NewLimiter(0.001, 1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	// Consume the only burst token
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Error("Wait should fail once the context is cancelled")
	}
}
