package merge

import (
	"testing"

	"revtree/pkg/page"
)

func TestFragmentsNewestSlotWins(t *testing.T) {
	older := page.NewRecordPage(0)
	older.Put(page.NewRecord(1, []byte("old")))
	older.Put(page.NewRecord(2, []byte("only-old")))

	newer := page.NewRecordPage(0)
	newer.Put(page.NewRecord(1, []byte("new")))

	merged := Fragments([]*page.RecordPage{newer, older})

	rec, ok := merged.Get(1)
	if !ok || string(rec.Value) != "new" {
		t.Fatalf("Get(1) = %+v, %v; want the newer fragment's value", rec, ok)
	}
	rec, ok = merged.Get(2)
	if !ok || string(rec.Value) != "only-old" {
		t.Fatalf("Get(2) = %+v, %v; want the older fragment's untouched slot", rec, ok)
	}
}

func TestFragmentsSingleFragmentIsReturnedAsIs(t *testing.T) {
	only := page.NewRecordPage(0)
	only.Put(page.NewRecord(1, []byte("v")))

	got := Fragments([]*page.RecordPage{only})
	if got != only {
		t.Error("expected a single-fragment input to be returned unchanged")
	}
}

func TestFragmentsEmptyInputIsNil(t *testing.T) {
	if got := Fragments(nil); got != nil {
		t.Errorf("Fragments(nil) = %v, want nil", got)
	}
}

func TestFragmentsPreservesOldestPreviousReference(t *testing.T) {
	older := page.NewRecordPage(0)
	older.Previous = page.NewPersistentReference(42)
	newer := page.NewRecordPage(0)
	newer.Previous = page.NewPersistentReference(99)

	merged := Fragments([]*page.RecordPage{newer, older})
	if merged.Previous.PersistentKey != 42 {
		t.Errorf("Previous.PersistentKey = %d, want 42 (the oldest fragment's chain pointer)", merged.Previous.PersistentKey)
	}
}
