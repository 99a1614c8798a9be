package revision

import (
	"context"
	"testing"

	"revtree/pkg/page"
)

type fakeFetcher struct {
	byKey map[int64]*page.RecordPage
}

func (f *fakeFetcher) FetchFragment(ctx context.Context, ref *page.Reference) (*page.RecordPage, error) {
	if ref == nil || ref.PersistentKey == page.NullID {
		return nil, nil
	}
	return f.byKey[ref.PersistentKey], nil
}

func fragmentAt(key int64, records ...page.Record) *page.RecordPage {
	rp := page.NewRecordPage(0)
	for _, r := range records {
		rp.Put(r)
	}
	if key != page.NullID {
		rp.Previous = page.NewPersistentReference(key)
	} else {
		rp.Previous = &page.Reference{PersistentKey: page.NullID}
	}
	return rp
}

func TestReconstructFusesIncrementalFragments(t *testing.T) {
	oldest := fragmentAt(page.NullID, page.NewRecord(1, []byte("v1")))
	newest := fragmentAt(1, page.NewRecord(2, []byte("v2")))

	fetcher := &fakeFetcher{byKey: map[int64]*page.RecordPage{
		2: newest,
		1: oldest,
	}}

	r := &Reconstructor{Kind: Incremental{}, RevisionsToRestore: 5}
	leaf := page.NewPersistentReference(2)

	container, err := r.Reconstruct(context.Background(), leaf, 10, fetcher)
	if err != nil {
		t.Fatal(err)
	}
	if container.IsEmpty() {
		t.Fatal("expected non-empty container")
	}
	if _, ok := container.Record(1); !ok {
		t.Error("expected record 1 to survive fusion from the older fragment")
	}
	if _, ok := container.Record(2); !ok {
		t.Error("expected record 2 from the newest fragment")
	}
}

func TestReconstructStopsAtSaturatedFragment(t *testing.T) {
	saturated := page.NewRecordPage(0)
	for i := int64(0); i < page.NDPNodeCount; i++ {
		saturated.Put(page.NewRecord(i, nil))
	}
	saturated.Previous = page.NewPersistentReference(999) // must never be followed

	fetcher := &fakeFetcher{byKey: map[int64]*page.RecordPage{
		1:   saturated,
		999: fragmentAt(page.NullID, page.NewRecord(9999, []byte("should not appear"))),
	}}

	r := &Reconstructor{Kind: Full{}, RevisionsToRestore: 5}
	leaf := page.NewPersistentReference(1)

	container, err := r.Reconstruct(context.Background(), leaf, 10, fetcher)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := container.Record(9999); ok {
		t.Error("reconstructor followed past a saturated fragment")
	}
}

func TestReconstructEmptyWhenLeafIsNull(t *testing.T) {
	r := &Reconstructor{Kind: Full{}, RevisionsToRestore: 1}
	leaf := &page.Reference{PersistentKey: page.NullID}

	container, err := r.Reconstruct(context.Background(), leaf, 0, &fakeFetcher{byKey: map[int64]*page.RecordPage{}})
	if err != nil {
		t.Fatal(err)
	}
	if !container.IsEmpty() {
		t.Error("expected empty container for a null leaf reference")
	}
}
