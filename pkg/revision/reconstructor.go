package revision

import (
	"context"

	"revtree/pkg/page"
	"revtree/pkg/rerr"
)

// FragmentFetcher dereferences a leaf reference into one persisted
// fragment, applying the standard dereference precedence (log overlay,
// then materialised page, then page cache/reader).
type FragmentFetcher interface {
	FetchFragment(ctx context.Context, ref *page.Reference) (*page.RecordPage, error)
}

// Reconstructor walks a leaf reference's previous-reference chain and
// fuses the collected fragments via the configured versioning policy.
type Reconstructor struct {
	Kind               Kind
	RevisionsToRestore int
}

// Reconstruct returns the complete, fused container for leaf, reading
// fragments from fetcher and following previous-reference links.
func (r *Reconstructor) Reconstruct(ctx context.Context, leaf *page.Reference, currentRevision int64, fetcher FragmentFetcher) (page.Container, error) {
	roots := r.Kind.RevisionRoots(currentRevision, r.RevisionsToRestore)
	bound := len(roots)
	if bound == 0 {
		bound = 1
	}

	fragments := make([]*page.RecordPage, 0, bound)
	current := leaf

	for i := 0; i < bound; i++ {
		if current == nil {
			break
		}
		if current.PersistentKey == page.NullID && current.LogKey == nil {
			break
		}

		fragment, err := fetcher.FetchFragment(ctx, current)
		if err != nil {
			return page.Empty, rerr.FromCacheLoad(err)
		}
		if fragment == nil {
			break
		}

		fragments = append(fragments, fragment)
		if fragment.IsSaturated() {
			// Older fragments cannot contribute anything new.
			break
		}
		current = fragment.Previous
	}

	if len(fragments) == 0 {
		return page.Empty, nil
	}

	complete, err := r.Kind.CombineRecordPages(ctx, fragments, r.RevisionsToRestore)
	if err != nil {
		return page.Empty, rerr.WrapIO("combining record page fragments", err)
	}
	if complete == nil {
		return page.Empty, nil
	}
	return page.Container{Fragment: complete}, nil
}
