package txn

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"revtree/pkg/buffer"
	"revtree/pkg/config"
	"revtree/pkg/page"
	"revtree/pkg/pager"
	"revtree/pkg/txlog"
)

// buildResource lays out a single-revision resource with height-0 tries
// (every StartReference addresses its target page directly), so the
// transaction's construction and dereference paths can be exercised
// without building a multi-level indirect-page trie.
func buildResource(t *testing.T, revisionNumber int64) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "resource.db")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	fragment := page.NewRecordPage(0)
	fragment.Put(page.NewRecord(5, []byte("hello")))
	if err := pager.WritePageAt(f, 2, fragment); err != nil {
		t.Fatal(err)
	}

	names := page.NewNamePage()
	names.SetName(1, "title", []byte("title"), 1)
	if err := pager.WritePageAt(f, 3, names); err != nil {
		t.Fatal(err)
	}

	root := &page.RevisionRootPage{
		Revision:        revisionNumber,
		RecordTrie:      page.NewPersistentReference(2),
		NameTrie:        page.NewPersistentReference(3),
		PathTrie:        &page.Reference{PersistentKey: page.NullID},
		CasTrie:         &page.Reference{PersistentKey: page.NullID},
		PathSummaryTrie: &page.Reference{PersistentKey: page.NullID},
	}
	if err := pager.WritePageAt(f, 1, root); err != nil {
		t.Fatal(err)
	}

	uber := &page.UberPage{
		RevisionTrie: page.NewPersistentReference(1),
		Shifts:       map[page.Kind][]uint{},
	}
	if err := pager.WritePageAt(f, 0, uber); err != nil {
		t.Fatal(err)
	}

	return dir
}

func openResource(t *testing.T, dir string, revisionNumber int64) *Transaction {
	t.Helper()
	cfg := config.Default(dir)
	reader, err := pager.NewFileReader(filepath.Join(dir, "resource.db"), false, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { reader.Close() })

	bufferMgr := buffer.New(cfg.BufferShardCount, cfg.PageCacheCapacity, cfg.RecordPageCacheCapacity)
	txn, err := NewAtRevision(context.Background(), cfg, reader, bufferMgr, nil, revisionNumber)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { txn.Close() })
	return txn
}

func TestNewAtRevisionLocatesRevisionRoot(t *testing.T) {
	dir := buildResource(t, 7)
	txn := openResource(t, dir, 7)

	if txn.RevisionNumber() != 7 {
		t.Errorf("RevisionNumber() = %d, want 7", txn.RevisionNumber())
	}
	if txn.ActualRevisionRootPage().Revision != 7 {
		t.Errorf("revision root's Revision = %d, want 7", txn.ActualRevisionRootPage().Revision)
	}
}

func TestNewAtRevisionRejectsMismatchedRevision(t *testing.T) {
	dir := buildResource(t, 7)
	cfg := config.Default(dir)
	reader, err := pager.NewFileReader(filepath.Join(dir, "resource.db"), false, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	bufferMgr := buffer.New(cfg.BufferShardCount, cfg.PageCacheCapacity, cfg.RecordPageCacheCapacity)

	if _, err := NewAtRevision(context.Background(), cfg, reader, bufferMgr, nil, 8); err == nil {
		t.Fatal("expected revision mismatch to fail construction")
	}
}

func TestNewAtRevisionRejectsNegativeRevision(t *testing.T) {
	dir := buildResource(t, 0)
	cfg := config.Default(dir)
	reader, err := pager.NewFileReader(filepath.Join(dir, "resource.db"), false, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	bufferMgr := buffer.New(cfg.BufferShardCount, cfg.PageCacheCapacity, cfg.RecordPageCacheCapacity)

	if _, err := NewAtRevision(context.Background(), cfg, reader, bufferMgr, nil, -1); err == nil {
		t.Fatal("expected a negative revision to fail construction")
	}
}

func TestRecordFindsValueInFragment(t *testing.T) {
	dir := buildResource(t, 0)
	txn := openResource(t, dir, 0)

	rec, ok, err := txn.Record(context.Background(), 5, page.RecordPageKind, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(rec.Value) != "hello" {
		t.Fatalf("Record(5) = %+v, %v", rec, ok)
	}
}

// TestRecordConsultsOverlayBeforeRecordPageContainer builds a resource
// whose on-disk fragment holds one value, then shadows the same
// (pageKind, pageKey, index) in the record-page log overlay with a
// different value and asserts Record returns the overlay's value,
// proving the container cache's loader checks the overlay first
// instead of going straight to RecordPageContainer's on-disk descent.
func TestRecordConsultsOverlayBeforeRecordPageContainer(t *testing.T) {
	dir := buildResource(t, 0)

	pageLog, err := os.Create(filepath.Join(dir, "resource."+"page"))
	if err != nil {
		t.Fatal(err)
	}
	pageLog.Close()

	recordLog, err := os.Create(filepath.Join(dir, "resource."+"node"))
	if err != nil {
		t.Fatal(err)
	}
	w := bufio.NewWriter(recordLog)
	shadow := page.NewRecordPage(0)
	shadow.Put(page.NewRecord(5, []byte("shadowed")))
	if err := txlog.WriteRecordLogLine(w, page.RecordPageKind, 0, -1, shadow); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	recordLog.Close()

	commit, err := os.Create(filepath.Join(dir, txlog.CommitFileName))
	if err != nil {
		t.Fatal(err)
	}
	commit.Close()

	txn := openResource(t, dir, 0)
	rec, ok, err := txn.Record(context.Background(), 5, page.RecordPageKind, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || string(rec.Value) != "shadowed" {
		t.Fatalf("Record(5) = %+v, %v, want overlay value %q", rec, ok, "shadowed")
	}
}

func TestRecordAbsentKeyIsMiss(t *testing.T) {
	dir := buildResource(t, 0)
	txn := openResource(t, dir, 0)

	_, ok, err := txn.Record(context.Background(), 999, page.RecordPageKind, -1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected an absent record key to miss")
	}
}

func TestRecordNullNodeKeyIsMiss(t *testing.T) {
	dir := buildResource(t, 0)
	txn := openResource(t, dir, 0)

	_, ok, err := txn.Record(context.Background(), page.NullNodeKey, page.RecordPageKind, -1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected NullNodeKey to miss without touching storage")
	}
}

func TestRecordRejectsUnsupportedPageKind(t *testing.T) {
	dir := buildResource(t, 0)
	txn := openResource(t, dir, 0)

	if _, _, err := txn.Record(context.Background(), 5, page.UberPageKind, -1); err == nil {
		t.Fatal("expected an unsupported page kind to be rejected")
	}
}

func TestNamePageIsEagerlyCached(t *testing.T) {
	dir := buildResource(t, 0)
	txn := openResource(t, dir, 0)

	name, ok, err := txn.Name(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || name != "title" {
		t.Fatalf("Name(1) = %q, %v", name, ok)
	}
}

func TestEachTransactionGetsAUniqueID(t *testing.T) {
	dir := buildResource(t, 0)
	a := openResource(t, dir, 0)
	b := openResource(t, dir, 0)

	if a.ID() == b.ID() {
		t.Fatal("expected distinct transactions to get distinct trace ids")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := buildResource(t, 0)
	txn := openResource(t, dir, 0)

	if err := txn.Close(); err != nil {
		t.Fatal(err)
	}
	if err := txn.Close(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := txn.Record(context.Background(), 5, page.RecordPageKind, -1); err == nil {
		t.Fatal("expected operations on a closed transaction to fail")
	}
}
