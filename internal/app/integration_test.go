package app

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/nobel-prize-cache/internal/testutil"
	"github.com/Sternrassler/nobel-prize-cache/pkg/client"
)

// TestRedisBackend_FullFlow covers upstream → client → Redis store → service
// against a real Redis container.
func TestRedisBackend_FullFlow(t *testing.T) {
	rdb := testutil.StartRedis(t)

	upstream := testutil.NewMockUpstream(
		testutil.NewPrize(2020, "Physics", 10000000, "Roger Penrose", "Reinhard Genzel", "Andrea Ghez"),
		testutil.NewPrize(2019, "Physics", 9000000, "James Peebles"),
	)
	defer upstream.Close()

	ctx := context.Background()
	a, err := New(ctx, testConfig(t, map[string]any{
		"api_base_url":  upstream.URL(),
		"cache_backend": "redis",
		"redis_addr":    rdb.Options().Addr,
		"redis_prefix":  "it",
	}))
	require.NoError(t, err)

	params := url.Values{"nobelPrizeYear": {"2020"}}

	t.Run("miss then hit", func(t *testing.T) {
		first, err := a.Service.Prizes(ctx, params)
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.Equal(t, []string{"Roger Penrose", "Reinhard Genzel", "Andrea Ghez"}, first[0].WinnerNames())

		second, err := a.Service.Prizes(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, upstream.PathCount("/nobelPrizes"))
	})

	t.Run("entries live under the prefix", func(t *testing.T) {
		keys, err := rdb.Keys(ctx, "it:prizes:*").Result()
		require.NoError(t, err)
		assert.Len(t, keys, 1)

		ttl, err := rdb.TTL(ctx, keys[0]).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("upstream failures are not cached", func(t *testing.T) {
		upstream.SetResponse("/nobelPrizes", testutil.NewServerErrorResponse())
		_, err := a.Service.Prizes(ctx, url.Values{"nobelPrizeYear": {"1901"}})
		require.Error(t, err)
		assert.Equal(t, 500, client.StatusCode(err))

		keys, err := rdb.Keys(ctx, "it:prizes:*").Result()
		require.NoError(t, err)
		assert.Len(t, keys, 1)
		upstream.ClearHandler("/nobelPrizes")
	})

	t.Run("statistics sample", func(t *testing.T) {
		st, err := a.Service.Statistics(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, st.TotalPrizes)
		assert.Equal(t, 4, st.TotalLaureates)
	})

	require.NoError(t, a.Close(ctx))

	keys, err := rdb.Keys(ctx, "it:*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys, "Close flushes the process's own entries")
}

// TestRedisBackend_TTL checks that Redis expires entries on its own.
func TestRedisBackend_TTL(t *testing.T) {
	rdb := testutil.StartRedis(t)

	upstream := testutil.NewMockUpstream(testutil.NewPrize(1901, "Physics", 150782, "Wilhelm Conrad Röntgen"))
	defer upstream.Close()

	ctx := context.Background()
	a, err := New(ctx, testConfig(t, map[string]any{
		"api_base_url":  upstream.URL(),
		"cache_backend": "redis",
		"redis_addr":    rdb.Options().Addr,
		"cache_ttl":     time.Second,
	}))
	require.NoError(t, err)
	defer a.Close(ctx)

	_, err = a.Service.Prizes(ctx, nil)
	require.NoError(t, err)

	time.Sleep(1500 * time.Millisecond)

	_, err = a.Service.Prizes(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.PathCount("/nobelPrizes"))
}
