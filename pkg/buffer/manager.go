package buffer

import (
	"context"

	"golang.org/x/sync/singleflight"

	"revtree/pkg/page"
)

// PageLoader fetches and decodes one page, for use when a cache miss
// needs to fall through to the log overlay / durable storage, in the
// dereference order implemented by pkg/txn.
type PageLoader func(ctx context.Context) (page.Page, error)

// RecordFragmentLoader is PageLoader specialised to record-page
// fragments, the payload of the second cache tier's record-page cache.
type RecordFragmentLoader func(ctx context.Context) (*page.RecordPage, error)

// ResourceBufferManager is the cache tier shared across every
// transaction open on a resource: a sharded page cache and a sharded
// record-page cache, with concurrent misses on the same key collapsed
// via singleflight instead of each transaction re-reading storage.
type ResourceBufferManager struct {
	pages       []*shard
	recordPages []*shard
	loadPages   singleflight.Group
	loadRecords singleflight.Group
	shardCount  int
}

// New builds a manager with pageCapacity/recordCapacity entries spread
// evenly across shardCount shards each.
func New(shardCount, pageCapacity, recordCapacity int) *ResourceBufferManager {
	if shardCount <= 0 {
		shardCount = 1
	}
	m := &ResourceBufferManager{shardCount: shardCount}
	m.pages = make([]*shard, shardCount)
	m.recordPages = make([]*shard, shardCount)
	perShardPages := pageCapacity / shardCount
	perShardRecords := recordCapacity / shardCount
	for i := 0; i < shardCount; i++ {
		m.pages[i] = newShard(perShardPages)
		m.recordPages[i] = newShard(perShardRecords)
	}
	return m
}

// GetPage returns a cached page for key, loading and inserting it via
// load on a miss. Concurrent misses for the same key share one load.
// When writerPresent is true the result is never inserted into the
// shared cache: a resource with an active writer must not let readers
// observe pages the writer may still mutate.
func (m *ResourceBufferManager) GetPage(ctx context.Context, key page.Key, writerPresent bool, load PageLoader) (page.Page, error) {
	shard := m.pages[shardIndex(key, m.shardCount)]
	if v, ok := shard.get(key); ok {
		return v.(page.Page), nil
	}

	result, err, _ := m.loadPages.Do(string(key.Bytes()), func() (any, error) {
		p, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if !writerPresent {
			shard.put(key, p)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(page.Page), nil
}

// GetRecordFragment is GetPage specialised to the record-page cache.
func (m *ResourceBufferManager) GetRecordFragment(ctx context.Context, key page.Key, writerPresent bool, load RecordFragmentLoader) (*page.RecordPage, error) {
	shard := m.recordPages[shardIndex(key, m.shardCount)]
	if v, ok := shard.get(key); ok {
		return v.(*page.RecordPage), nil
	}

	result, err, _ := m.loadRecords.Do(string(key.Bytes()), func() (any, error) {
		rp, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if !writerPresent {
			shard.put(key, rp)
		}
		return rp, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*page.RecordPage), nil
}

// PutPage unconditionally inserts p under key, for call sites that
// already decided insertion is safe: a per-transaction page-cache miss
// that read through to storage, with no writer present, also seeds the
// shared page cache.
func (m *ResourceBufferManager) PutPage(key page.Key, p page.Page) {
	m.pages[shardIndex(key, m.shardCount)].put(key, p)
}

// PutRecordFragment is PutPage for the record-page cache.
func (m *ResourceBufferManager) PutRecordFragment(key page.Key, rp *page.RecordPage) {
	m.recordPages[shardIndex(key, m.shardCount)].put(key, rp)
}

// Clear drops every cached entry, e.g. when a resource's writer commits
// and invalidates the shared view.
func (m *ResourceBufferManager) Clear() {
	for _, s := range m.pages {
		s.clear()
	}
	for _, s := range m.recordPages {
		s.clear()
	}
}
