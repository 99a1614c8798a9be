package cache

import (
	"context"
	"testing"
	"time"

	"revtree/pkg/page"
)

func TestContainerCacheGetOrLoadCachesAfterMiss(t *testing.T) {
	c := NewContainerCache(10, time.Minute, time.Minute)
	defer c.Close()

	key := ContainerKey{Kind: page.RecordPageKind, PageKey: 3, Index: -1}
	loads := 0
	load := func(ctx context.Context, k ContainerKey) (page.Container, error) {
		loads++
		rp := page.NewRecordPage(3)
		rp.Put(page.NewRecord(3*page.NDPNodeCount+1, []byte("v")))
		return page.Container{Fragment: rp}, nil
	}

	if _, err := c.GetOrLoad(context.Background(), key, load); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrLoad(context.Background(), key, load); err != nil {
		t.Fatal(err)
	}
	if loads != 1 {
		t.Fatalf("loader called %d times, want 1", loads)
	}
}

func TestContainerCacheTotalTTLExpiresEntry(t *testing.T) {
	c := NewContainerCache(10, time.Hour, time.Millisecond)
	defer c.Close()

	key := ContainerKey{Kind: page.RecordPageKind, PageKey: 3, Index: -1}
	loads := 0
	load := func(ctx context.Context, k ContainerKey) (page.Container, error) {
		loads++
		return page.Container{Fragment: page.NewRecordPage(3)}, nil
	}

	if _, err := c.GetOrLoad(context.Background(), key, load); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := c.GetOrLoad(context.Background(), key, load); err != nil {
		t.Fatal(err)
	}
	if loads != 2 {
		t.Fatalf("loader called %d times, want 2 (total TTL should force a reload)", loads)
	}
}

func TestContainerCacheClearForcesReload(t *testing.T) {
	c := NewContainerCache(10, time.Minute, time.Minute)
	defer c.Close()

	key := ContainerKey{Kind: page.RecordPageKind, PageKey: 3, Index: -1}
	loads := 0
	load := func(ctx context.Context, k ContainerKey) (page.Container, error) {
		loads++
		return page.Container{Fragment: page.NewRecordPage(3)}, nil
	}

	if _, err := c.GetOrLoad(context.Background(), key, load); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if _, err := c.GetOrLoad(context.Background(), key, load); err != nil {
		t.Fatal(err)
	}
	if loads != 2 {
		t.Fatalf("loader called %d times after Clear, want 2", loads)
	}
}
