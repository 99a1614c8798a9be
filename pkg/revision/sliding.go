package revision

import (
	"context"

	"revtree/internal/merge"
	"revtree/pkg/page"
)

// SlidingSnapshot combines the most recent maxFragments revisions'
// fragments into one view, regardless of whether each fragment is
// itself a full copy or a partial overlay. Its walk is bounded by the
// window width exactly as Incremental's is; in addition,
// CombineRecordPages drops any fragments beyond maxFragments.
type SlidingSnapshot struct{}

func (SlidingSnapshot) Name() string { return "sliding-snapshot" }

func (SlidingSnapshot) RevisionRoots(currentRevision int64, maxFragments int) []int64 {
	if maxFragments <= 0 {
		maxFragments = 1
	}
	roots := make([]int64, 0, maxFragments)
	for rev := currentRevision; rev >= 0 && len(roots) < maxFragments; rev-- {
		roots = append(roots, rev)
	}
	return roots
}

func (SlidingSnapshot) CombineRecordPages(ctx context.Context, fragments []*page.RecordPage, maxFragments int) (*page.RecordPage, error) {
	if len(fragments) > maxFragments && maxFragments > 0 {
		fragments = fragments[:maxFragments]
	}
	return merge.Fragments(fragments), nil
}
