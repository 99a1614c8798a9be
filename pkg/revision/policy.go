// Package revision implements the pluggable versioning policy and the
// snapshot reconstructor that fuses a leaf's fragment chain into a
// complete record page.
package revision

import (
	"context"

	"revtree/pkg/page"
)

// Kind is the versioning-policy contract: which ancestor revisions
// contribute to reconstructing a page at revision r, and how their
// fragments are merged.
type Kind interface {
	Name() string

	// RevisionRoots returns the ordered list of revision numbers that
	// may contribute to a reconstruction at currentRevision, bounded by
	// maxFragments. The reconstructor is oblivious to what the numbers
	// mean; only the list's length bounds how many fragments it walks.
	RevisionRoots(currentRevision int64, maxFragments int) []int64

	// CombineRecordPages fuses fragments (newest first) into one
	// complete page.
	CombineRecordPages(ctx context.Context, fragments []*page.RecordPage, maxFragments int) (*page.RecordPage, error)
}
