// Package testutil builds on-disk resource fixtures for tests, using a
// temp-dir-plus-cleanup idiom generalised from a single flat DB file to
// a resource directory holding the page file. No commit marker, log
// files or index definitions are written.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	copy "github.com/otiai10/copy"

	"revtree/pkg/page"
	"revtree/pkg/pager"
)

// EnsureCleanup registers fn to run via t.Cleanup.
func EnsureCleanup(t *testing.T, fn func()) {
	t.Cleanup(fn)
}

// GetTempResourceDir creates a fresh temp directory for a resource,
// removed automatically when the test completes.
func GetTempResourceDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "revtree-resource-*")
	if err != nil {
		t.Fatal(err)
	}
	EnsureCleanup(t, func() { _ = os.RemoveAll(dir) })
	return dir
}

// CloneResource stages an independent copy of src at a fresh temp
// directory, so a test can mutate the copy without disturbing a
// fixture shared across subtests.
func CloneResource(t *testing.T, src string) string {
	dst := GetTempResourceDir(t)
	if err := copy.Copy(src, dst); err != nil {
		t.Fatal(err)
	}
	return dst
}

// Resource is a minimal, single-revision fixture: one uber page, one
// revision root, and whatever record-page fragment chain the caller
// builds with PutRecordFragment.
type Resource struct {
	Dir      string
	PagePath string

	file        *os.File
	nextKey     int64
	UberKey     int64
	RootKey     int64
	RecordShift []uint
}

// NewResource lays out an empty resource directory with an uber page
// pointing at one revision root, ready for fragments to be appended.
func NewResource(t *testing.T, revisionNumber int64) *Resource {
	dir := GetTempResourceDir(t)
	pagePath := filepath.Join(dir, "resource.db")

	f, err := os.OpenFile(pagePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatal(err)
	}
	EnsureCleanup(t, func() { _ = f.Close() })

	r := &Resource{Dir: dir, PagePath: pagePath, file: f, nextKey: 2, RecordShift: []uint{20, 10, 0}}

	r.RootKey = 1
	root := &page.RevisionRootPage{
		Revision:        revisionNumber,
		RecordTrie:      &page.Reference{PersistentKey: page.NullID},
		NameTrie:        &page.Reference{PersistentKey: page.NullID},
		PathTrie:        &page.Reference{PersistentKey: page.NullID},
		CasTrie:         &page.Reference{PersistentKey: page.NullID},
		PathSummaryTrie: &page.Reference{PersistentKey: page.NullID},
	}
	if err := pager.WritePageAt(f, r.RootKey, root); err != nil {
		t.Fatal(err)
	}

	r.UberKey = 0
	uber := &page.UberPage{
		RevisionTrie: page.NewPersistentReference(r.RootKey),
		Shifts:       map[page.Kind][]uint{page.RecordPageKind: r.RecordShift},
	}
	if err := pager.WritePageAt(f, r.UberKey, uber); err != nil {
		t.Fatal(err)
	}

	return r
}

// PutRecordFragment writes fragment at a fresh persistent key and
// returns a reference to it. It does not chain fragments: the caller
// sets fragment.Previous before writing.
func (r *Resource) PutRecordFragment(t *testing.T, fragment *page.RecordPage) *page.Reference {
	key := r.nextKey
	r.nextKey++
	if err := pager.WritePageAt(r.file, key, fragment); err != nil {
		t.Fatal(err)
	}
	return page.NewPersistentReference(key)
}

// Reader opens a FileReader over this resource's page file.
func (r *Resource) Reader(t *testing.T) *pager.FileReader {
	reader, err := pager.NewFileReader(r.PagePath, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	EnsureCleanup(t, func() { _ = reader.Close() })
	return reader
}
