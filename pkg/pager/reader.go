// Package pager dereferences a page's persistent key into raw bytes and
// decodes them, resolving variable-length compressed frames against
// either a local directio-backed file or an S3-backed store.
package pager

import (
	"context"

	"revtree/pkg/page"
)

// Reader fetches and decodes one page by its persistent key. Both
// FileReader and S3Reader implement it so the rest of the read path
// (pkg/buffer, pkg/txn) never branches on storage medium.
type Reader interface {
	ReadPage(ctx context.Context, kind page.Kind, persistentKey int64) (page.Page, error)
	Close() error
}
