package txlog

import (
	"testing"

	"revtree/pkg/page"
)

func TestInMemoryWriterLogPutAndGet(t *testing.T) {
	log := NewInMemoryWriterLog()
	key := page.LogKey{Kind: page.RecordPageKind, Index: -1, Level: 1, Position: 3}
	rp := page.NewRecordPage(0)

	if _, ok := log.PageAt(key); ok {
		t.Fatal("expected miss before Put")
	}
	log.Put(key, rp)
	got, ok := log.PageAt(key)
	if !ok || got != page.Page(rp) {
		t.Fatalf("PageAt = %v, %v; want %v, true", got, ok, rp)
	}
}
