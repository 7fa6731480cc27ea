package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachable returns a cache whose client never connects; only the
// argument checks that run before any round trip are exercised.
func unreachable(t *testing.T) *Cache {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheWithClient(client)
}

func TestCache_ArgumentChecks(t *testing.T) {
	c := unreachable(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Set(ctx, "", "v", time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, c.Set(ctx, "k", "v", -time.Second), ErrCacheInvalidTTL)
	assert.ErrorIs(t, c.Set(ctx, "k", make(chan int), time.Minute), ErrCacheSerialization)

	var dest string
	assert.ErrorIs(t, c.Get(ctx, "", &dest), ErrCacheKeyEmpty)
	assert.NoError(t, c.Delete(ctx))
}

func TestCache_VersionedArgumentChecks(t *testing.T) {
	c := unreachable(t)
	ctx := context.Background()

	_, err := c.SetIfVersion(ctx, "", "gen", 1, "v", time.Minute)
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
	_, err = c.SetIfVersion(ctx, "k", "", 1, "v", time.Minute)
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
	_, err = c.SetIfVersion(ctx, "k", "gen", 1, nil, time.Minute)
	assert.ErrorIs(t, err, ErrCacheNilValue)
	_, err = c.SetIfVersion(ctx, "k", "gen", 1, "v", -time.Second)
	assert.ErrorIs(t, err, ErrCacheInvalidTTL)
	_, err = c.SetIfVersion(ctx, "k", "gen", 1, make(chan int), time.Minute)
	assert.ErrorIs(t, err, ErrCacheSerialization)

	_, err = c.Version(ctx, "")
	assert.ErrorIs(t, err, ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.BumpVersion(ctx, ""), ErrCacheKeyEmpty)
}

func TestCache_UnreachableServer(t *testing.T) {
	c := unreachable(t)
	ctx := context.Background()

	assert.Error(t, c.Ping(ctx))

	tree := NewCurriculumCache(c)
	_, err := tree.GetTree(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	_, err = tree.Generation(ctx)
	assert.Error(t, err)
	stored, err := tree.SetTree(ctx, nil, 0, 0)
	assert.Error(t, err)
	assert.False(t, stored)
	assert.Error(t, tree.InvalidateTree(ctx))
}

func TestNewCacheFromURL_Invalid(t *testing.T) {
	_, err := NewCacheFromURL(context.Background(), "http://not-redis")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestCurriculumTreeKey(t *testing.T) {
	assert.Equal(t, "curriculum:tree", CurriculumTreeKey())
	assert.Equal(t, "curriculum:gen", CurriculumGenerationKey())
}
