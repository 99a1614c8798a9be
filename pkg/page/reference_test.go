package page

import "testing"

func TestCacheKeyPrefersPersistentKeyOverLogKey(t *testing.T) {
	ref := NewPersistentReference(42)
	ref.StampLogKey(LogKey{Kind: RecordPageKind, Index: 0, Level: 1, Position: 5})

	got := ref.CacheKey()
	want := Key{Persistent: 42}
	if got != want {
		t.Errorf("CacheKey() = %+v, want %+v", got, want)
	}
}

func TestCacheKeyFallsBackToLogKeyWhenUnpersisted(t *testing.T) {
	ref := &Reference{PersistentKey: NullID}
	ref.StampLogKey(LogKey{Kind: RecordPageKind, Index: 0, Level: 1, Position: 5})

	got := ref.CacheKey()
	want := Key{HasLog: true, Log: LogKey{Kind: RecordPageKind, Index: 0, Level: 1, Position: 5}}
	if got != want {
		t.Errorf("CacheKey() = %+v, want %+v", got, want)
	}
}

func TestCacheKeyDistinguishesCollidingLogPositions(t *testing.T) {
	// Two references reached via different upper-level ancestors but
	// sharing the same final-level offset must not collide once both
	// are persisted.
	a := NewPersistentReference(100)
	a.StampLogKey(LogKey{Kind: RecordPageKind, Index: 0, Level: 1, Position: 3})

	b := NewPersistentReference(200)
	b.StampLogKey(LogKey{Kind: RecordPageKind, Index: 0, Level: 1, Position: 3})

	if a.CacheKey() == b.CacheKey() {
		t.Error("expected distinct persistent keys to produce distinct cache keys despite identical log positions")
	}
}
