// Package navigator implements indirect-tree descent: given a per-kind
// shift-exponent array and a starting reference, walk the fixed-height
// radix trie to the leaf reference for a logical key.
package navigator

import (
	"context"
	"fmt"

	"revtree/pkg/page"
	"revtree/pkg/rerr"
)

// Dereferencer resolves a page reference into its materialised page.
// pkg/txn supplies the concrete implementation: writer log first, then
// already-materialised page, then the per-transaction page cache
// backed by the log overlay and storage reader.
type Dereferencer interface {
	Dereference(ctx context.Context, ref *page.Reference, kind page.Kind) (page.Page, error)
}

// Navigate descends the indirect-page trie for kind/index starting at
// start, returning the leaf reference that would hold key. shifts is
// the per-kind shift-exponent array retrieved from the uber page; its
// length is the trie height.
//
// Stamping a reference's log key and advancing the descent cursor both
// happen unconditionally, independent of whether any writer log is
// active for this transaction.
func Navigate(ctx context.Context, deref Dereferencer, shifts []uint, start *page.Reference, key int64, index int64, kind page.Kind) (*page.Reference, error) {
	height := len(shifts)
	current := start
	remaining := key
	parentOffset := int64(0)

	for l := 0; l < height; l++ {
		shift := shifts[l]
		offset := remaining >> shift
		remaining -= offset << shift

		current.StampLogKey(page.LogKey{
			Kind:     kind,
			Index:    index,
			Level:    l,
			Position: parentOffset*page.INPReferenceCount + offset,
		})

		resolved, err := deref.Dereference(ctx, current, page.IndirectPageKind)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			return nil, nil
		}

		indirect, ok := resolved.(*page.IndirectPage)
		if !ok {
			return nil, rerr.WrapIO("navigating indirect tree",
				fmt.Errorf("expected indirect page at level %d, got %T", l, resolved))
		}

		next, inBounds := indirect.Reference(offset)
		if !inBounds {
			return nil, rerr.WrapIO("navigating indirect tree", fmt.Errorf("key too large"))
		}

		current = next
		parentOffset = offset
	}

	current.StampLogKey(page.LogKey{
		Kind: kind, Index: index, Level: height,
		Position: parentOffset * page.INPReferenceCount,
	})
	return current, nil
}

// PageKeyOf converts a record key into the logical page key that owns
// it.
func PageKeyOf(recordKey int64) int64 {
	return page.PageKeyOf(recordKey)
}
