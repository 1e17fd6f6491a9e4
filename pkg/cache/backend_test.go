package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BackendConfig
		want    string
		wantErr bool
	}{
		{name: "default is memory", cfg: BackendConfig{TTL: time.Minute}, want: "*cache.Memory[int]"},
		{name: "memory", cfg: BackendConfig{Backend: "memory"}, want: "*cache.Memory[int]"},
		{name: "lru", cfg: BackendConfig{Backend: "LRU", Capacity: 10}, want: "*cache.LRU[int]"},
		{name: "lru without capacity", cfg: BackendConfig{Backend: "lru"}, wantErr: true},
		{name: "redis without client", cfg: BackendConfig{Backend: "redis"}, wantErr: true},
		{name: "unknown", cfg: BackendConfig{Backend: "disk"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore[int](tt.cfg, "counts")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer store.Close()

			if got := fmt.Sprintf("%T", store); got != tt.want {
				t.Errorf("NewStore() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewStore_RedisPrefix(t *testing.T) {
	rc := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rc.Close()

	store, err := NewStore[int](BackendConfig{Backend: "redis", Redis: rc, Prefix: "nobel-cache:"}, "prizes")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	r, ok := store.(*Redis[int])
	if !ok {
		t.Fatalf("NewStore() = %T, want *Redis[int]", store)
	}
	if got := r.key("nobel:x"); got != "nobel-cache:prizes:nobel:x" {
		t.Errorf("key = %q", got)
	}
}

func TestNewStore_MemorySweeps(t *testing.T) {
	store, err := NewStore[int](BackendConfig{TTL: time.Millisecond, SweepInterval: 5 * time.Millisecond}, "counts")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer store.Close()

	mem := store.(*Memory[int])
	_ = mem.Set(context.Background(), "a", 1)

	deadline := time.Now().Add(time.Second)
	for mem.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if mem.Len() != 0 {
		t.Error("expired entry was not swept")
	}
}
