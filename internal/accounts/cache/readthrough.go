package cache

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

// ReadThrough serves reads from a Cache, falling back to a loader on a miss.
// Concurrent misses for the same key share one loader call. A failing cache
// degrades to a miss: reads still succeed from the source of truth.
type ReadThrough struct {
	Cache Cache
	group singleflight.Group
}

func NewReadThrough(c Cache) *ReadThrough {
	if c == nil {
		c = Nop{}
	}
	return &ReadThrough{Cache: c}
}

// Fetch returns the value at key, or loads, stores and returns it. hit
// reports whether the value came from the cache.
func Fetch[T any](
	ctx context.Context,
	rt *ReadThrough,
	key string,
	ttl time.Duration,
	load func(context.Context) (T, error),
) (value T, hit bool, err error) {
	log := slogx.FromContext(ctx)

	var cached T
	ok, err := rt.Cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		log.Warn("cache get failed, reading through", "key", key, "err", err)
	case ok:
		log.Debug("cache hit", "key", key)
		return cached, true, nil
	}

	log.Debug("cache miss", "key", key)

	// The leader's context drives the shared load.
	v, err, _ := rt.group.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := rt.Cache.Set(ctx, key, loaded, ttl); err != nil {
			log.Warn("cache set failed", "key", key, "err", err)
		}
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v.(T), false, nil
}

// Invalidate deletes keys and bumps namespaces. Failures are logged, not
// returned: the write they follow has already committed.
func (rt *ReadThrough) Invalidate(ctx context.Context, keys []string, namespaces ...string) {
	log := slogx.FromContext(ctx)

	if err := rt.Cache.Delete(ctx, keys...); err != nil {
		log.Warn("cache delete failed", "keys", keys, "err", err)
	}
	for _, ns := range namespaces {
		if err := rt.Cache.Bump(ctx, ns); err != nil {
			log.Warn("cache version bump failed", "namespace", ns, "err", err)
		}
	}
}

// Version returns the namespace version. ok is false when the version could
// not be read; callers must then bypass the cache, since an older version's
// keys may still hold stale pages.
func (rt *ReadThrough) Version(ctx context.Context, namespace string) (ver int64, ok bool) {
	ver, err := rt.Cache.Version(ctx, namespace)
	if err != nil {
		slogx.FromContext(ctx).Warn("cache version read failed", "namespace", namespace, "err", err)
		return 0, false
	}
	return ver, true
}
