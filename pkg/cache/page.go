package cache

import (
	"context"

	"revtree/pkg/page"
)

// PageLoader resolves a page.Reference on a cache miss: the log
// overlay first, then the storage reader.
type PageLoader func(ctx context.Context, ref *page.Reference) (page.Page, error)

// PageCache is the per-transaction page cache: unbounded, torn down
// with the transaction rather than time- or size-limited, since its
// whole lifetime is one bound revision's read set.
type PageCache struct {
	entries map[page.Key]page.Page
}

func NewPageCache() *PageCache {
	return &PageCache{entries: make(map[page.Key]page.Page)}
}

// GetOrLoad returns the cached page for ref, or loads, caches and
// returns a fresh one on a miss.
func (c *PageCache) GetOrLoad(ctx context.Context, ref *page.Reference, load PageLoader) (page.Page, error) {
	key := ref.CacheKey()
	if p, ok := c.entries[key]; ok {
		return p, nil
	}
	p, err := load(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.entries[key] = p
	ref.Page = p
	return p, nil
}

// Clear discards every cached page.
func (c *PageCache) Clear() {
	c.entries = make(map[page.Key]page.Page)
}
