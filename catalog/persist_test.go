package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCache_RoundTrip(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}

	in := Cached{
		Records:    FallbackRecords(),
		AcquiredAt: time.Date(2025, 6, 1, 12, 34, 56, 789000000, time.UTC),
		Source:     "https://example.test/catalog",
	}
	if err := dc.Store(in); err != nil {
		t.Fatalf("Store: %v", err)
	}

	out, ok, err := dc.Load(in.Source)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(out.Records) != len(in.Records) {
		t.Fatalf("records = %d, want %d", len(out.Records), len(in.Records))
	}
	for i := range in.Records {
		if out.Records[i] != in.Records[i] {
			t.Errorf("record %d changed across round trip", i)
		}
	}
	// Timestamps persist at millisecond resolution.
	if !out.AcquiredAt.Equal(in.AcquiredAt.Truncate(time.Millisecond)) {
		t.Errorf("AcquiredAt = %v, want %v", out.AcquiredAt, in.AcquiredAt.Truncate(time.Millisecond))
	}
	if out.Source != in.Source {
		t.Errorf("Source = %q, want %q", out.Source, in.Source)
	}
}

func TestDiskCache_MissingSlotIsAbsentNotError(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	_, ok, err := dc.Load("https://example.test/never-stored")
	if err != nil {
		t.Fatalf("missing slot returned error: %v", err)
	}
	if ok {
		t.Errorf("missing slot reported present")
	}
}

func TestDiskCache_CorruptSlotReturnsError(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}

	source := "https://example.test/corrupt"
	if err := os.WriteFile(dc.path(source), []byte("not a cache slot"), 0o644); err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}

	_, ok, err := dc.Load(source)
	if err == nil {
		t.Errorf("corrupt slot should return an error")
	}
	if ok {
		t.Errorf("corrupt slot reported present")
	}
}

func TestDiskCache_DistinctSourcesGetDistinctSlots(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	a := dc.path("https://example.test/a")
	b := dc.path("https://example.test/b")
	if a == b {
		t.Errorf("sources mapped to the same slot file")
	}
	if filepath.Dir(a) != dir {
		t.Errorf("slot %q not under cache dir %q", a, dir)
	}
}

func TestStore_CorruptPersistedCacheTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir)
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := os.WriteFile(dc.path(srv.URL), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}

	// Construction must not fail; the corrupt slot is ignored and with
	// the network also failing the next Get reaches the built-in
	// fallback tier.
	store := NewStore(StoreOptions{
		Ingestor: NewIngestor(srv.Client(), nil, nil, nil),
		Disk:     dc,
	}, srv.URL)
	got := store.Get(context.Background(), srv.URL)
	if got.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback after corrupt cache", got.Source)
	}
}

func TestStore_PersistedCacheLoadedAtStartup(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}

	source := "https://example.test/persisted"
	clock := newFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	saved := Cached{Records: FallbackRecords(), AcquiredAt: clock.Now(), Source: source}
	if err := dc.Store(saved); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// A fresh store with the same disk cache serves the persisted slot
	// without any network call.
	store := NewStore(StoreOptions{Disk: dc, Clock: clock}, source)
	got := store.Get(context.Background(), source)
	if got.Source != source {
		t.Errorf("Source = %q, want persisted %q", got.Source, source)
	}
	if len(got.Records) != len(saved.Records) {
		t.Errorf("records = %d, want %d", len(got.Records), len(saved.Records))
	}
}
