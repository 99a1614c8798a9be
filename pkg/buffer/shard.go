// Package buffer implements the resource-wide buffer manager: a page
// cache and a record-page cache shared across every transaction open on
// a resource. It builds sharded, reference-keyed LRU caches out of
// pkg/list's doubly-linked eviction order.
package buffer

import (
	"sync"

	"github.com/spaolacci/murmur3"

	"revtree/pkg/list"
	"revtree/pkg/page"
)

// shard is one partition of a cache: an LRU list plus an index from
// cache key to its link in that list, using the same head/tail/PopSelf
// eviction discipline as a pinned/unpinned page-list pool.
type shard struct {
	mu       sync.Mutex
	capacity int
	index    map[page.Key]*list.Link
	lru      *list.List
}

func newShard(capacity int) *shard {
	return &shard{
		capacity: capacity,
		index:    make(map[page.Key]*list.Link),
		lru:      list.NewList(),
	}
}

func (s *shard) get(key page.Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.index[key]
	if !ok {
		return nil, false
	}
	e := link.GetValue()
	link.PopSelf()
	s.index[key] = s.lru.PushTail(e)
	return e.Value, true
}

func (s *shard) put(key page.Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link, ok := s.index[key]; ok {
		link.PopSelf()
		delete(s.index, key)
	}
	s.index[key] = s.lru.PushTail(list.Entry{Key: key, Value: value})

	for s.capacity > 0 && len(s.index) > s.capacity {
		head := s.lru.PeekHead()
		if head == nil {
			break
		}
		evicted := head.GetValue()
		head.PopSelf()
		delete(s.index, evicted.Key)
	}
}

func (s *shard) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[page.Key]*list.Link)
	s.lru = list.NewList()
}

// shardIndex hashes key into one of count shards via murmur3, spreading
// the resource-wide cache's lock contention across independent shards.
func shardIndex(key page.Key, count int) int {
	if count <= 1 {
		return 0
	}
	h := murmur3.Sum32(key.Bytes())
	return int(h % uint32(count))
}
