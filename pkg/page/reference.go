package page

import "encoding/binary"

// LogKey identifies an indirect-tree node inside a writer's uncommitted
// log, independent of whether it has ever been persisted.
//
// Position is parent-offset * INPReferenceCount + child-offset for the
// node's level.
type LogKey struct {
	Kind     Kind
	Index    int64
	Level    int
	Position int64
}

// Reference carries a persistent key, a log key, and (once resolved) a
// materialised page. At least one of PersistentKey/LogKey is set for
// every reachable reference.
type Reference struct {
	PersistentKey int64
	LogKey        *LogKey
	Page          Page
}

// NewPersistentReference builds a reference to a durable, on-disk page.
func NewPersistentReference(offset int64) *Reference {
	return &Reference{PersistentKey: offset, LogKey: nil}
}

// NullReference reports whether both the persistent key and the log key
// are unset, in which case dereferencing yields null.
func (r *Reference) NullReference() bool {
	return r == nil || (r.PersistentKey == NullID && r.LogKey == nil)
}

// Key is a comparable identity for a Reference, used as the cache key
// for the per-transaction and resource-wide page/record-page caches.
// Two references denote the same page iff they carry the same Key.
type Key struct {
	Persistent int64
	HasLog     bool
	Log        LogKey
}

// CacheKey returns this reference's identity for cache lookups. A
// reference with a persistent offset is keyed by that offset — every
// reference reaches a page via navigator descent, which stamps a log
// key on every reference regardless of whether a writer is active, so
// the log key's Position alone (bounded by INPReferenceCount per level)
// is not unique across distinct upper-level ancestors and must never be
// preferred over an assigned persistent offset. Only a reference with
// no persistent offset yet (not durably written, writer-log only) is
// keyed by its log key.
func (r *Reference) CacheKey() Key {
	if r.PersistentKey != NullID {
		return Key{Persistent: r.PersistentKey}
	}
	if r.LogKey != nil {
		return Key{HasLog: true, Log: *r.LogKey}
	}
	return Key{Persistent: r.PersistentKey}
}

// Bytes gives a stable byte encoding of k, for hashing into a cache
// shard (pkg/buffer) rather than for on-disk storage.
func (k Key) Bytes() []byte {
	buf := make([]byte, 8+1+8+8+8+8)
	binary.BigEndian.PutUint64(buf[0:8], uint64(k.Persistent))
	if k.HasLog {
		buf[8] = 1
	}
	binary.BigEndian.PutUint64(buf[9:17], uint64(k.Log.Kind))
	binary.BigEndian.PutUint64(buf[17:25], uint64(k.Log.Index))
	binary.BigEndian.PutUint64(buf[25:33], uint64(k.Log.Level))
	binary.BigEndian.PutUint64(buf[33:41], uint64(k.Log.Position))
	return buf
}

// StampLogKey assigns k to this reference if it doesn't already carry
// one. This stamping happens unconditionally during descent, even when
// no writer log is active for the transaction, so that a later writer
// can reuse the key.
func (r *Reference) StampLogKey(k LogKey) {
	if r.LogKey == nil {
		stamped := k
		r.LogKey = &stamped
	}
}
