package revision

import (
	"context"

	"revtree/internal/merge"
	"revtree/pkg/page"
)

// Incremental stores, at every revision but the first, a diff against
// the immediately preceding revision. Reconstruction must walk back
// through every intervening fragment, bounded by maxFragments.
type Incremental struct{}

func (Incremental) Name() string { return "incremental" }

func (Incremental) RevisionRoots(currentRevision int64, maxFragments int) []int64 {
	if maxFragments <= 0 {
		maxFragments = 1
	}
	roots := make([]int64, 0, maxFragments)
	for rev := currentRevision; rev >= 0 && len(roots) < maxFragments; rev-- {
		roots = append(roots, rev)
	}
	return roots
}

func (Incremental) CombineRecordPages(ctx context.Context, fragments []*page.RecordPage, maxFragments int) (*page.RecordPage, error) {
	return merge.Fragments(fragments), nil
}
