// Package merge implements the fragment-fusion step shared by the
// differential, incremental, and sliding-snapshot versioning policies:
// walk fragments newest-first and let the first (newest) fragment to
// touch a slot win.
//
// Slot occupancy across the union of fragments is tracked with a
// roaring bitmap the way hupe1980-vecgo tracks vector-id membership,
// borrowed here for record-key-slot membership instead.
package merge

import (
	"github.com/RoaringBitmap/roaring/v2"

	"revtree/pkg/page"
)

// Fragments fuses fragments (ordered newest to oldest) into one
// complete record page. Later (older) fragments never overwrite a slot
// a newer fragment already filled.
func Fragments(fragments []*page.RecordPage) *page.RecordPage {
	if len(fragments) == 0 {
		return nil
	}
	if len(fragments) == 1 {
		return fragments[0]
	}

	filled := roaring.New()
	complete := page.NewRecordPage(fragments[0].PageKeyValue)
	complete.Previous = fragments[len(fragments)-1].Previous

	for _, fragment := range fragments {
		for _, key := range fragment.Keys() {
			slot := uint32(key & (page.NDPNodeCount - 1))
			if filled.Contains(slot) {
				continue
			}
			rec, ok := fragment.Get(key)
			if !ok {
				continue
			}
			complete.Put(rec)
			filled.Add(slot)
		}
	}
	return complete
}
