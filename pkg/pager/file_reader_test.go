package pager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"revtree/pkg/page"
)

func TestFileReaderReadPageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resource.db")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	rp := page.NewRecordPage(1)
	rp.Put(page.NewRecord(page.NDPNodeCount+1, []byte("hello")))
	if err := WritePageAt(f, 3, rp); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	reader, err := NewFileReader(path, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	got, err := reader.ReadPage(context.Background(), page.RecordPageKind, 3)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := got.(*page.RecordPage).Get(page.NDPNodeCount + 1)
	if !ok || string(rec.Value) != "hello" {
		t.Errorf("Get = %+v, %v", rec, ok)
	}
}

func TestFileReaderRejectsNullID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resource.db")
	if _, err := os.Create(path); err != nil {
		t.Fatal(err)
	}
	reader, err := NewFileReader(path, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	if _, err := reader.ReadPage(context.Background(), page.RecordPageKind, page.NullID); err == nil {
		t.Fatal("expected reading NULL_ID to fail")
	}
}

func TestFileReaderSpillsAcrossBlocksForLargeFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resource.db")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	rp := page.NewRecordPage(1)
	for i := int64(0); i < page.NDPNodeCount; i++ {
		value := make([]byte, 64)
		for j := range value {
			value[j] = byte(i*7 + int64(j))
		}
		rp.Put(page.NewRecord(page.NDPNodeCount+i, value))
	}
	if err := WritePageAt(f, 0, rp); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	reader, err := NewFileReader(path, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	got, err := reader.ReadPage(context.Background(), page.RecordPageKind, 0)
	if err != nil {
		t.Fatal(err)
	}
	decoded := got.(*page.RecordPage)
	for i := int64(0); i < page.NDPNodeCount; i++ {
		if _, ok := decoded.Get(page.NDPNodeCount + i); !ok {
			t.Fatalf("missing record %d after spilled read", i)
		}
	}
}
