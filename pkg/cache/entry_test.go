package cache

import (
	"testing"
	"time"
)

func TestEntry_ExpiredAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"expired entry", now.Add(-1 * time.Hour), true},
		{"valid entry", now.Add(1 * time.Hour), false},
		{"just expired", now.Add(-1 * time.Nanosecond), true},
		{"expires exactly now", now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Entry[string]{ExpiresAt: tt.expiresAt}
			if got := entry.ExpiredAt(now); got != tt.want {
				t.Errorf("ExpiredAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTLAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	if got := (Entry[int]{ExpiresAt: now.Add(5 * time.Minute)}).TTLAt(now); got != 5*time.Minute {
		t.Errorf("TTLAt() = %v, want 5m", got)
	}
	if got := (Entry[int]{ExpiresAt: now.Add(-time.Minute)}).TTLAt(now); got != 0 {
		t.Errorf("TTLAt() = %v, want 0 for expired entry", got)
	}
}
