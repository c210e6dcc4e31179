package shouts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb)
}

func TestCache_RoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetLatest(ctx, &Shout{
		ID:        3,
		Author:    "u1@example.com",
		Phrase:    "shipped it",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}))

	got, err := cache.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, "shipped it", got.Phrase)
}

func TestCache_EmptyReturnsNil(t *testing.T) {
	got, err := newTestCache(t).Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}
