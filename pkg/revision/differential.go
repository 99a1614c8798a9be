package revision

import (
	"context"

	"revtree/internal/merge"
	"revtree/pkg/page"
)

// Differential writes a full snapshot at a periodic checkpoint revision
// and a diff fragment on every other revision; reconstruction walks the
// previous-reference chain through each intervening fragment back to
// the checkpoint. RevisionRoots is oblivious to where that checkpoint
// falls: like Incremental and SlidingSnapshot it just hands the
// reconstructor up to maxFragments consecutive revision numbers to walk
// backward through, relying on the checkpoint fragment's
// IsSaturated() to stop the walk early once it's reached.
type Differential struct{}

func (Differential) Name() string { return "differential" }

func (Differential) RevisionRoots(currentRevision int64, maxFragments int) []int64 {
	if maxFragments <= 0 {
		maxFragments = 1
	}
	roots := make([]int64, 0, maxFragments)
	for rev := currentRevision; rev >= 0 && len(roots) < maxFragments; rev-- {
		roots = append(roots, rev)
	}
	return roots
}

func (Differential) CombineRecordPages(ctx context.Context, fragments []*page.RecordPage, maxFragments int) (*page.RecordPage, error) {
	return merge.Fragments(fragments), nil
}
