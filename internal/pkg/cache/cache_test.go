package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "a"}, time.Minute))
	var out payload
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "stats:student:s1", payload{Name: "s1", Count: 3}, time.Minute))

	var out payload
	require.NoError(t, m.Get(ctx, "stats:student:s1", &out))
	assert.Equal(t, payload{Name: "s1", Count: 3}, out)

	now = now.Add(time.Minute)
	assert.ErrorIs(t, m.Get(ctx, "stats:student:s1", &out), ErrCacheMiss)
}

func TestMemoryDeleteAndEmptyKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "a", 1, 0))
	require.NoError(t, m.Delete(ctx, "a", "missing"))

	var n int
	assert.ErrorIs(t, m.Get(ctx, "a", &n), ErrCacheMiss)
	assert.ErrorIs(t, m.Set(ctx, "", 1, 0), ErrCacheKeyEmpty)
}

func TestRedisCacheRejectsEmptyKey(t *testing.T) {
	// The client connects lazily, so key validation runs without a server.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	c := NewRedisCacheFromClient(client)

	var out payload
	assert.ErrorIs(t, c.Get(context.Background(), "", &out), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(context.Background(), "", out, time.Second), ErrCacheKeyEmpty)
	assert.NoError(t, c.Delete(context.Background()))
}
