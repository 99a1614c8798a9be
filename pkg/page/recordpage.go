package page

import "github.com/bits-and-blooms/bitset"

// RecordPage is a leaf of the record trie: an ordered mapping from
// record key to record value, plus a previous-reference chaining to the
// prior revision's fragment of the same logical page.
//
// Occupied tracks which of the NDPNodeCount slots in this fragment are
// filled, so Size() (and therefore the saturation short-circuit that
// stops fragment fusion early) is an O(1) popcount rather than a map
// length walk that would otherwise need its own bookkeeping once
// fusion starts overlaying fragments slot by slot.
type RecordPage struct {
	PageKeyValue int64
	records      map[int64]Record
	Occupied     *bitset.BitSet
	Previous     *Reference
}

// NewRecordPage creates an empty fragment for the given logical page key.
func NewRecordPage(pageKey int64) *RecordPage {
	return &RecordPage{
		PageKeyValue: pageKey,
		records:      make(map[int64]Record),
		Occupied:     bitset.New(uint(NDPNodeCount)),
	}
}

func (p *RecordPage) Kind() Kind { return RecordPageKind }

// slotOf returns the within-page slot for a record key belonging to
// this page (the low NDPNodeCountExponent bits of the key).
func slotOf(key int64) uint {
	return uint(key & (NDPNodeCount - 1))
}

// Put inserts or overwrites a record in this fragment.
func (p *RecordPage) Put(r Record) {
	p.records[r.Key] = r
	p.Occupied.Set(slotOf(r.Key))
}

// Get returns the record stored at key in this fragment, if any.
func (p *RecordPage) Get(key int64) (Record, bool) {
	r, ok := p.records[key]
	return r, ok
}

// Keys returns every record key present in this fragment.
func (p *RecordPage) Keys() []int64 {
	keys := make([]int64, 0, len(p.records))
	for k := range p.records {
		keys = append(keys, k)
	}
	return keys
}

// Size returns the number of occupied slots in this fragment.
func (p *RecordPage) Size() int64 {
	return int64(p.Occupied.Count())
}

// IsSaturated reports whether this fragment is at full capacity, in
// which case older fragments cannot contribute anything new.
func (p *RecordPage) IsSaturated() bool {
	return p.Size() == NDPNodeCount
}
