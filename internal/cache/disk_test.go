package cache

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestDisk(t *testing.T, capacity int64, level int) *DiskStore {
	t.Helper()

	ds, err := NewDiskStore(DiskConfig{Path: t.TempDir(), Capacity: capacity, CompressionLevel: level})
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	return ds
}

func TestDiskStorePutGet(t *testing.T) {
	for _, level := range []int{0, 3} {
		ds := newTestDisk(t, 1<<20, level)

		value := []byte(strings.Repeat("The quick brown fox. ", 200))
		if err := ds.Put("doc/1", value); err != nil {
			t.Fatalf("level %d: Put() error = %v", level, err)
		}

		got, ok := ds.Get("doc/1")
		if !ok || !bytes.Equal(got, value) {
			t.Errorf("level %d: Get() = %d bytes, ok=%v", level, len(got), ok)
		}
		if _, ok := ds.Get("doc/2"); ok {
			t.Errorf("level %d: unexpected hit for missing key", level)
		}

		stats := ds.Stats()
		if stats.Hits != 1 || stats.Misses != 1 || stats.ItemCount != 1 {
			t.Errorf("level %d: stats = %+v", level, stats)
		}
		if level > 0 && stats.Size >= int64(len(value)) {
			t.Errorf("compressed size %d should be smaller than %d", stats.Size, len(value))
		}
	}
}

func TestDiskStoreEvictsOldest(t *testing.T) {
	ds := newTestDisk(t, 250, 0)

	_ = ds.Put("a", bytes.Repeat([]byte("a"), 100))
	time.Sleep(time.Millisecond)
	_ = ds.Put("b", bytes.Repeat([]byte("b"), 100))
	time.Sleep(time.Millisecond)
	ds.Get("a")

	if err := ds.Put("c", bytes.Repeat([]byte("c"), 100)); err != nil {
		t.Fatal(err)
	}
	if _, ok := ds.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if _, ok := ds.Get("a"); !ok {
		t.Error("recently used entry should survive")
	}
	if ds.Stats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", ds.Stats().Evictions)
	}

	if err := ds.Put("huge", make([]byte, 1000)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put(huge) error = %v, want ErrItemTooLarge", err)
	}
}

func TestDiskStorePersistsIndex(t *testing.T) {
	dir := t.TempDir()
	cfg := DiskConfig{Path: dir, Capacity: 1 << 20, CompressionLevel: 3}

	ds, err := NewDiskStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Put("doc/3", []byte("page three")); err != nil {
		t.Fatal(err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewDiskStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("doc/3")
	if !ok || string(got) != "page three" {
		t.Errorf("Get() after reopen = %q, %v", got, ok)
	}
}

func TestDiskStoreClearAndPrune(t *testing.T) {
	ds := newTestDisk(t, 1<<20, 0)

	_ = ds.Put("old", []byte("x"))
	if n := ds.RemoveOlderThan(time.Now().Add(time.Second)); n != 1 {
		t.Errorf("RemoveOlderThan() = %d, want 1", n)
	}

	_ = ds.Put("k", []byte("y"))
	ds.Delete("k")
	_ = ds.Put("k2", []byte("z"))
	if err := ds.Clear(); err != nil {
		t.Fatal(err)
	}
	if s := ds.Stats(); s.ItemCount != 0 || s.Size != 0 {
		t.Errorf("after clear: %+v", s)
	}
}
