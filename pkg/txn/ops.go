package txn

import (
	"context"

	"github.com/google/uuid"

	"revtree/pkg/cache"
	"revtree/pkg/navigator"
	"revtree/pkg/page"
	"revtree/pkg/pager"
	"revtree/pkg/rerr"
)

var recordLookupKinds = map[page.Kind]bool{
	page.RecordPageKind:      true,
	page.PathSummaryPageKind: true,
	page.PathPageKind:        true,
	page.CasPageKind:         true,
	page.NamePageKind:        true,
}

// Record looks up nodeKey in the record-page leaf addressed by
// (pageKind, index), filtering the deleted sentinel.
func (t *Transaction) Record(ctx context.Context, nodeKey int64, pageKind page.Kind, index int64) (page.Record, bool, error) {
	if err := t.assertOpen(); err != nil {
		return page.Record{}, false, err
	}
	if nodeKey == page.NullNodeKey {
		return page.Record{}, false, nil
	}
	if !recordLookupKinds[pageKind] {
		return page.Record{}, false, rerr.InvalidArg("record: unsupported page kind")
	}

	pageKey := navigator.PageKeyOf(nodeKey)
	key := cache.ContainerKey{Kind: pageKind, PageKey: pageKey, Index: index}
	container, err := t.containerCache.GetOrLoad(ctx, key, func(ctx context.Context, key cache.ContainerKey) (page.Container, error) {
		if t.overlay != nil {
			if c, ok := t.overlay.RecordContainer(key.Kind, key.PageKey, key.Index); ok {
				return c, nil
			}
		}
		return t.RecordPageContainer(ctx, key.PageKey, key.Index, key.Kind)
	})
	if err != nil {
		return page.Record{}, false, err
	}
	if container.IsEmpty() {
		return page.Record{}, false, nil
	}
	rec, ok := container.Record(nodeKey)
	return rec, ok, nil
}

// RecordPageContainer resolves the leaf reference for (pageKey, index,
// pageKind), consulting the resource-wide record-page cache before
// invoking the snapshot reconstructor.
func (t *Transaction) RecordPageContainer(ctx context.Context, pageKey, index int64, pageKind page.Kind) (page.Container, error) {
	if err := t.assertOpen(); err != nil {
		return page.Empty, err
	}
	if pageKey < 0 {
		return page.Empty, rerr.InvalidArg("recordPageContainer: pageKey must be >= 0")
	}

	leaf, err := t.PageReferenceForPage(ctx, pageKind, pageKey, index)
	if err != nil {
		return page.Empty, err
	}
	if leaf == nil || leaf.NullReference() {
		return page.Empty, nil
	}

	writerPresent := t.writerLog != nil
	fragment, err := t.bufferMgr.GetRecordFragment(ctx, leaf.CacheKey(), writerPresent, func(ctx context.Context) (*page.RecordPage, error) {
		container, err := t.reconstructor.Reconstruct(ctx, leaf, t.revision, fetcherFunc(t.fetchFragment))
		if err != nil {
			return nil, err
		}
		return container.Fragment, nil
	})
	if err != nil {
		return page.Empty, err
	}
	if fragment == nil {
		return page.Empty, nil
	}
	return page.Container{Fragment: fragment}, nil
}

type fetcherFunc func(ctx context.Context, ref *page.Reference) (*page.RecordPage, error)

func (f fetcherFunc) FetchFragment(ctx context.Context, ref *page.Reference) (*page.RecordPage, error) {
	return f(ctx, ref)
}

func (t *Transaction) fetchFragment(ctx context.Context, ref *page.Reference) (*page.RecordPage, error) {
	p, err := t.Dereference(ctx, ref, page.RecordPageKind)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	rp, ok := p.(*page.RecordPage)
	if !ok {
		return nil, rerr.WrapIO("fetching record fragment", errUnexpectedKind(p))
	}
	return rp, nil
}

// PageReferenceForPage is the public form of the indirect-tree descent:
// it picks the start reference for pageKind (resolving the named page
// first when pageKind isn't RECORDPAGE) and navigates to the leaf
// reference for pageKey.
func (t *Transaction) PageReferenceForPage(ctx context.Context, pageKind page.Kind, pageKey, index int64) (*page.Reference, error) {
	start, err := t.startReference(ctx, pageKind, index)
	if err != nil {
		return nil, err
	}
	if start == nil {
		return nil, nil
	}
	shifts := t.uberPage.ShiftsFor(pageKind)
	return navigator.Navigate(ctx, t, shifts, start, pageKey, index, pageKind)
}

func (t *Transaction) startReference(ctx context.Context, pageKind page.Kind, index int64) (*page.Reference, error) {
	if pageKind == page.RecordPageKind {
		return t.revisionRoot.StartReference(page.RecordPageKind), nil
	}
	named, err := t.namedPage(ctx, pageKind)
	if err != nil {
		return nil, err
	}
	if named == nil {
		return nil, nil
	}
	return named.IndirectReference(index), nil
}

// namedPage resolves the NAMEPAGE/PATHPAGE/CASPAGE/PATHSUMMARYPAGE at
// the revision root, going through the per-transaction page cache with
// log-overlay precedence.
func (t *Transaction) namedPage(ctx context.Context, kind page.Kind) (page.NamedPage, error) {
	if kind == page.NamePageKind {
		np, err := t.namePageLocked(ctx)
		if err != nil || np == nil {
			return nil, err
		}
		return np, nil
	}

	ref := t.revisionRoot.StartReference(kind)
	if ref == nil {
		return nil, nil
	}
	if (t.writerLog != nil || t.overlay != nil) && ref.LogKey == nil {
		ref.StampLogKey(page.LogKey{Kind: kind, Index: -1, Level: -1, Position: 0})
	}
	resolved, err := t.Dereference(ctx, ref, kind)
	if err != nil || resolved == nil {
		return nil, err
	}
	named, ok := resolved.(page.NamedPage)
	if !ok {
		return nil, rerr.WrapIO("resolving named page", errUnexpectedKind(resolved))
	}
	return named, nil
}

func (t *Transaction) namePageLocked(ctx context.Context) (*page.NamePage, error) {
	if t.cachedName != nil {
		return t.cachedName, nil
	}
	ref := t.revisionRoot.NameTrie
	if ref == nil {
		return nil, nil
	}
	if (t.writerLog != nil || t.overlay != nil) && ref.LogKey == nil {
		ref.StampLogKey(page.LogKey{Kind: page.NamePageKind, Index: -1, Level: -1, Position: 0})
	}
	resolved, err := t.Dereference(ctx, ref, page.NamePageKind)
	if err != nil || resolved == nil {
		return nil, err
	}
	np, ok := resolved.(*page.NamePage)
	if !ok {
		return nil, rerr.WrapIO("resolving name page", errUnexpectedKind(resolved))
	}
	t.cachedName = np
	return np, nil
}

// NamePage returns the revision's name page.
func (t *Transaction) NamePage(ctx context.Context) (*page.NamePage, error) {
	if err := t.assertOpen(); err != nil {
		return nil, err
	}
	return t.namePageLocked(ctx)
}

// PathPage returns the revision's path page.
func (t *Transaction) PathPage(ctx context.Context) (page.NamedPage, error) {
	if err := t.assertOpen(); err != nil {
		return nil, err
	}
	return t.namedPage(ctx, page.PathPageKind)
}

// CasPage returns the revision's CAS page.
func (t *Transaction) CasPage(ctx context.Context) (page.NamedPage, error) {
	if err := t.assertOpen(); err != nil {
		return nil, err
	}
	return t.namedPage(ctx, page.CasPageKind)
}

// PathSummaryPage returns the revision's path-summary page.
func (t *Transaction) PathSummaryPage(ctx context.Context) (page.NamedPage, error) {
	if err := t.assertOpen(); err != nil {
		return nil, err
	}
	return t.namedPage(ctx, page.PathSummaryPageKind)
}

// Name returns the decoded name dictionary entry for key.
func (t *Transaction) Name(ctx context.Context, key int64) (string, bool, error) {
	if err := t.assertOpen(); err != nil {
		return "", false, err
	}
	np, err := t.namePageLocked(ctx)
	if err != nil || np == nil {
		return "", false, err
	}
	name, ok := np.Name(key)
	return name, ok, nil
}

// RawName returns the undecoded name dictionary entry for key.
func (t *Transaction) RawName(ctx context.Context, key int64) ([]byte, bool, error) {
	if err := t.assertOpen(); err != nil {
		return nil, false, err
	}
	np, err := t.namePageLocked(ctx)
	if err != nil || np == nil {
		return nil, false, err
	}
	raw, ok := np.RawName(key)
	return raw, ok, nil
}

// NameCount returns the name dictionary's reference count for key.
func (t *Transaction) NameCount(ctx context.Context, key int64) (int64, error) {
	if err := t.assertOpen(); err != nil {
		return 0, err
	}
	np, err := t.namePageLocked(ctx)
	if err != nil || np == nil {
		return 0, err
	}
	return np.NameCount(key), nil
}

// ID returns this transaction's trace identifier, logged at open/close
// so a resource's reads can be correlated across the shared buffer
// manager and log lines.
func (t *Transaction) ID() uuid.UUID { return t.id }

// UberPage returns the bound uber page.
func (t *Transaction) UberPage() *page.UberPage { return t.uberPage }

// ActualRevisionRootPage returns the bound revision root.
func (t *Transaction) ActualRevisionRootPage() *page.RevisionRootPage { return t.revisionRoot }

// RevisionNumber returns the bound revision.
func (t *Transaction) RevisionNumber() int64 { return t.revision }

// Reader returns the storage reader backing this transaction.
func (t *Transaction) Reader() pager.Reader { return t.reader }

// ClearCaches discards the per-transaction page and container caches
// without tearing down their handles.
func (t *Transaction) ClearCaches() {
	t.pageCache.Clear()
	t.containerCache.Clear()
	t.cachedName = nil
}

// CloseCaches tears down the per-transaction caches' handles (e.g. the
// container cache's background eviction goroutine).
func (t *Transaction) CloseCaches() {
	t.containerCache.Close()
}

// Close tears down per-transaction caches and log handles. It leaves
// the buffer manager untouched and is idempotent.
func (t *Transaction) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.cfg.Logger.Debug("txn: closing", "id", t.id)
	t.CloseCaches()
	if t.overlay != nil {
		return t.overlay.Close()
	}
	return nil
}

func errUnexpectedKind(p page.Page) error {
	return &unexpectedKindError{p: p}
}

type unexpectedKindError struct{ p page.Page }

func (e *unexpectedKindError) Error() string {
	if e.p == nil {
		return "unexpected nil page"
	}
	return "unexpected page kind: " + e.p.Kind().String()
}
