package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/accounts/internal/accounts/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name string `json:"name"`
}

func newRedis(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedis(client), mr
}

func TestRedisGetSetDelete(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	var got entry
	ok, err := c.Get(ctx, "user:1", &got)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "user:1", entry{Name: "Alice"}, 300*time.Second))
	require.Equal(t, 300*time.Second, mr.TTL("user:1"))

	ok, err = c.Get(ctx, "user:1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Alice", got.Name)

	require.NoError(t, c.Delete(ctx, "user:1", "user:missing"))
	require.False(t, mr.Exists("user:1"))
	require.NoError(t, c.Delete(ctx))
}

func TestRedisExpiry(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", entry{Name: "x"}, time.Minute))
	mr.FastForward(61 * time.Second)

	ok, err := c.Get(ctx, "k", &entry{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCorruptEntry(t *testing.T) {
	c, mr := newRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	_, err := c.Get(context.Background(), "k", &entry{})
	require.ErrorIs(t, err, cache.ErrCorrupt)
}

func TestRedisVersionBump(t *testing.T) {
	c, _ := newRedis(t)
	ctx := context.Background()

	ver, err := c.Version(ctx, cache.ListingNamespace)
	require.NoError(t, err)
	require.Zero(t, ver)

	require.NoError(t, c.Bump(ctx, cache.ListingNamespace))
	require.NoError(t, c.Bump(ctx, cache.ListingNamespace))

	ver, err = c.Version(ctx, cache.ListingNamespace)
	require.NoError(t, err)
	require.EqualValues(t, 2, ver)

	require.NotEqual(t, cache.ListingKey(1, 1, 10), cache.ListingKey(2, 1, 10))
}

func TestKeys(t *testing.T) {
	require.Equal(t, "user:01ABC", cache.UserNamespace("01ABC"))
	require.Equal(t, "user:01ABC:v4", cache.UserKey(4, "01ABC"))
	require.Equal(t, "users:v3:page=2:limit=10", cache.ListingKey(3, 2, 10))
}

func TestFetchHitAndMiss(t *testing.T) {
	c, _ := newRedis(t)
	rt := cache.NewReadThrough(c)
	ctx := context.Background()

	var calls int
	load := func(context.Context) (entry, error) {
		calls++
		return entry{Name: "from-db"}, nil
	}

	v, hit, err := cache.Fetch(ctx, rt, "user:1", time.Minute, load)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "from-db", v.Name)

	v, hit, err = cache.Fetch(ctx, rt, "user:1", time.Minute, load)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "from-db", v.Name)
	require.Equal(t, 1, calls)
}

func TestFetchLoaderError(t *testing.T) {
	rt := cache.NewReadThrough(nil)
	boom := errors.New("boom")

	_, _, err := cache.Fetch(context.Background(), rt, "k", time.Minute, func(context.Context) (entry, error) {
		return entry{}, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestFetchCollapsesConcurrentMisses(t *testing.T) {
	c, _ := newRedis(t)
	rt := cache.NewReadThrough(c)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (entry, error) {
		calls.Add(1)
		<-release
		return entry{Name: "once"}, nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]entry, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := cache.Fetch(context.Background(), rt, "user:hot", time.Minute, load)
			require.NoError(t, err)
			results[i] = v
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		require.Equal(t, "once", r.Name)
	}
}

func TestFetchDegradesWhenCacheDown(t *testing.T) {
	c, mr := newRedis(t)
	rt := cache.NewReadThrough(c)
	mr.Close()

	v, hit, err := cache.Fetch(context.Background(), rt, "user:1", time.Minute, func(context.Context) (entry, error) {
		return entry{Name: "db"}, nil
	})
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "db", v.Name)

	_, ok := rt.Version(context.Background(), cache.ListingNamespace)
	require.False(t, ok)

	// Best-effort: no panic, no error surfaced.
	rt.Invalidate(context.Background(), []string{"user:1"}, cache.ListingNamespace)
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", entry{}, time.Minute))
	ok, err := c.Get(ctx, "k", &entry{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Bump(ctx, "ns"))
	ver, err := c.Version(ctx, "ns")
	require.NoError(t, err)
	require.Zero(t, ver)
}
