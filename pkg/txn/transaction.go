// Package txn implements the page-read transaction: the component that
// binds a revision root, an uber page, a storage reader, an optional
// writer log, an index controller and the three cache tiers into
// record and named-page lookups.
package txn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"revtree/pkg/buffer"
	"revtree/pkg/cache"
	"revtree/pkg/config"
	"revtree/pkg/indexctl"
	"revtree/pkg/navigator"
	"revtree/pkg/pager"
	"revtree/pkg/rerr"
	"revtree/pkg/revision"
	"revtree/pkg/txlog"

	"revtree/pkg/page"
)

// Transaction is a page-read transaction bound to one revision.
type Transaction struct {
	id             uuid.UUID
	cfg            *config.Config
	reader         pager.Reader
	bufferMgr      *buffer.ResourceBufferManager
	writerLog      txlog.WriterPageLog
	overlay        *txlog.Overlay
	indexCtl       indexctl.Controller
	pageCache      *cache.PageCache
	containerCache *cache.ContainerCache
	reconstructor  *revision.Reconstructor

	revision     int64
	uberPage     *page.UberPage
	revisionRoot *page.RevisionRootPage
	cachedName   *page.NamePage

	closed bool
}

// NewAtRevision constructs a transaction bound to the given revision.
func NewAtRevision(ctx context.Context, cfg *config.Config, reader pager.Reader, bufferMgr *buffer.ResourceBufferManager, writerLog txlog.WriterPageLog, revisionNumber int64) (*Transaction, error) {
	// Step 1: validate revision >= 0.
	if revisionNumber < 0 {
		return nil, rerr.InvalidArg("revision must be >= 0")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	t := &Transaction{
		id:             uuid.New(),
		cfg:            cfg,
		reader:         reader,
		bufferMgr:      bufferMgr,
		writerLog:      writerLog,
		pageCache:      cache.NewPageCache(),
		containerCache: cache.NewContainerCache(cfg.ContainerCacheCapacity, cfg.ContainerIdleTTL, cfg.ContainerTotalTTL),
		reconstructor:  &revision.Reconstructor{Kind: cfg.RevisionKind, RevisionsToRestore: cfg.RevisionsToRestore},
		revision:       revisionNumber,
	}
	cfg.Logger.Debug("txn: opening", "id", t.id, "revision", revisionNumber)

	// Step 2: index definitions (missing file is not an error).
	ctl, err := indexctl.Load(cfg.Path, revisionNumber)
	if err != nil {
		return nil, err
	}
	t.indexCtl = ctl

	// Step 3: detect commit file; its presence enables both log overlays.
	if txlog.CommitFilePresent(cfg.Path) {
		overlay, err := txlog.Open(ctx, cfg.Path, "resource")
		if err != nil {
			return nil, err
		}
		t.overlay = overlay
	}

	// Step 4: locate the revision root by navigating the uber page.
	uber, err := reader.ReadPage(ctx, page.UberPageKind, 0)
	if err != nil {
		return nil, rerr.WrapIO("reading uber page", err)
	}
	uberPage, ok := uber.(*page.UberPage)
	if !ok {
		return nil, rerr.WrapIO("reading uber page", fmt.Errorf("unexpected page kind %T", uber))
	}
	t.uberPage = uberPage

	shifts := uberPage.ShiftsFor(page.UberPageKind)
	leafRef, err := navigator.Navigate(ctx, t, shifts, uberPage.RevisionTrie, revisionNumber, -1, page.UberPageKind)
	if err != nil {
		return nil, err
	}
	if leafRef == nil || leafRef.NullReference() {
		return nil, rerr.WrapIO("locating revision root", fmt.Errorf("no revision root at revision %d", revisionNumber))
	}

	rootPage, err := t.Dereference(ctx, leafRef, page.RevisionRootPageKind)
	if err != nil {
		return nil, err
	}
	root, ok := rootPage.(*page.RevisionRootPage)
	if !ok {
		return nil, rerr.WrapIO("locating revision root", fmt.Errorf("unexpected page kind %T", rootPage))
	}
	// The revision root we navigated to must actually carry the
	// revision number we asked for.
	if root.Revision != revisionNumber {
		return nil, rerr.WrapIO("locating revision root",
			fmt.Errorf("revision root mismatch: wanted %d, found %d", revisionNumber, root.Revision))
	}
	t.revisionRoot = root

	// Step 5: cache the name page eagerly.
	if _, err := t.namePageLocked(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Transaction) assertOpen() error {
	if t.closed {
		return rerr.Closed("transaction")
	}
	return nil
}

// Dereference implements navigator.Dereferencer and the generic
// dereference precedence: writer log, then already-materialised page,
// then the per-transaction page cache backed by the overlay and reader.
func (t *Transaction) Dereference(ctx context.Context, ref *page.Reference, kind page.Kind) (page.Page, error) {
	if t.writerLog != nil && ref.LogKey != nil {
		if p, ok := t.writerLog.PageAt(*ref.LogKey); ok {
			return p, nil
		}
	}
	if ref.Page != nil {
		return ref.Page, nil
	}
	if ref.PersistentKey == page.NullID && ref.LogKey == nil {
		return nil, nil
	}

	return t.pageCache.GetOrLoad(ctx, ref, func(ctx context.Context, ref *page.Reference) (page.Page, error) {
		if t.overlay != nil && ref.LogKey != nil {
			if p, ok := t.overlay.PageAt(*ref.LogKey); ok {
				return p, nil
			}
		}
		if ref.PersistentKey == page.NullID {
			return nil, nil
		}
		p, err := t.reader.ReadPage(ctx, kind, ref.PersistentKey)
		if err != nil {
			return nil, err
		}
		if p != nil && t.writerLog == nil {
			t.bufferMgr.PutPage(ref.CacheKey(), p)
		}
		return p, nil
	})
}
