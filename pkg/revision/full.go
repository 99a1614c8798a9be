package revision

import (
	"context"

	"revtree/pkg/page"
)

// Full stores a complete page at every revision: reconstruction never
// needs to look further than the supplied leaf reference.
type Full struct{}

func (Full) Name() string { return "full" }

func (Full) RevisionRoots(currentRevision int64, maxFragments int) []int64 {
	return []int64{currentRevision}
}

func (Full) CombineRecordPages(ctx context.Context, fragments []*page.RecordPage, maxFragments int) (*page.RecordPage, error) {
	if len(fragments) == 0 {
		return nil, nil
	}
	return fragments[0], nil
}
