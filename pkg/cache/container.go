// Package cache implements the two per-transaction cache tiers: a
// bounded, dual-TTL record-page container cache and an unbounded page
// cache. Both fall through to the transaction log overlay and then to
// durable storage on a miss.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"revtree/pkg/page"
)

// ContainerKey identifies a record-page container by (page-kind,
// page-key, index), matching the record-page log's key shape.
type ContainerKey struct {
	Kind    page.Kind
	PageKey int64
	Index   int64
}

// ContainerLoader reconstructs a container on a cache miss, backed by
// the snapshot reconstructor wired in by pkg/txn.
type ContainerLoader func(ctx context.Context, key ContainerKey) (page.Container, error)

type containerEntry struct {
	container  page.Container
	insertedAt time.Time
}

// ContainerCache is the per-transaction record-page container cache:
// bounded by entry count, with both an idle TTL (reset on access, via
// ttlcache's default touch-on-hit) and a total TTL (checked manually,
// since a single idle-only clock can't express "evict even if it's
// still being read").
type ContainerCache struct {
	cache    *ttlcache.Cache[ContainerKey, containerEntry]
	totalTTL time.Duration
}

// NewContainerCache builds a cache capped at capacity entries, evicting
// an entry once idleTTL has elapsed since its last access or totalTTL
// since its insertion, whichever comes first.
func NewContainerCache(capacity int, idleTTL, totalTTL time.Duration) *ContainerCache {
	c := ttlcache.New[ContainerKey, containerEntry](
		ttlcache.WithCapacity[ContainerKey, containerEntry](uint64(capacity)),
		ttlcache.WithTTL[ContainerKey, containerEntry](idleTTL),
	)
	go c.Start()
	return &ContainerCache{cache: c, totalTTL: totalTTL}
}

// GetOrLoad returns the cached container for key, or loads, caches and
// returns a fresh one on a miss (including a miss caused by exceeding
// totalTTL).
func (c *ContainerCache) GetOrLoad(ctx context.Context, key ContainerKey, load ContainerLoader) (page.Container, error) {
	if item := c.cache.Get(key); item != nil {
		entry := item.Value()
		if c.totalTTL <= 0 || time.Since(entry.insertedAt) <= c.totalTTL {
			return entry.container, nil
		}
		c.cache.Delete(key)
	}

	container, err := load(ctx, key)
	if err != nil {
		return page.Empty, err
	}
	c.cache.Set(key, containerEntry{container: container, insertedAt: time.Now()}, ttlcache.DefaultTTL)
	return container, nil
}

// Clear discards every cached container.
func (c *ContainerCache) Clear() {
	c.cache.DeleteAll()
}

// Close stops the cache's background eviction goroutine.
func (c *ContainerCache) Close() {
	c.cache.Stop()
}
