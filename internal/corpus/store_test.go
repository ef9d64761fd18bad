package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/pricelens/internal/cache"
	apperrors "github.com/ppiankov/pricelens/internal/errors"
)

type fakeFetcher struct {
	names []string
	err   error
	calls int
}

func (f *fakeFetcher) ItemNames(ctx context.Context) ([]string, error) {
	f.calls++
	return f.names, f.err
}

// readOnlyStore serves reads from an embedded cache and fails every write
type readOnlyStore struct {
	cache.Store
}

func (readOnlyStore) Set(key string, value []byte, ttl time.Duration) error {
	return errors.New("read-only file system")
}

func writeSnapshot(t *testing.T, disk cache.Store, snap Snapshot) {
	t.Helper()
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	if err := disk.Set(snapshotKey, data, 0); err != nil {
		t.Fatal(err)
	}
}

func TestLoadUsesMatchingSnapshot(t *testing.T) {
	disk := cache.NewDiskCache(t.TempDir(), -1)
	writeSnapshot(t, disk, Snapshot{Version: "1.3.2", Items: []string{"M4A1", "Bitcoin"}, FetchedAt: time.Now()})
	fetcher := &fakeFetcher{names: []string{"should not be used"}}

	s := NewStore(disk, fetcher, "1.3.2", time.Hour)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetcher.calls != 0 {
		t.Errorf("expected no fetch, got %d", fetcher.calls)
	}
	if got := s.Names(); len(got) != 2 {
		t.Errorf("expected snapshot names, got %v", got)
	}
	if st := s.Stats(); st.Source != SourceDisk || st.Version != "1.3.2" {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestLoadRefetchesOnVersionMismatch(t *testing.T) {
	disk := cache.NewDiskCache(t.TempDir(), -1)
	writeSnapshot(t, disk, Snapshot{Version: "1.3.1", Items: []string{"Old item"}, FetchedAt: time.Now()})
	fetcher := &fakeFetcher{names: []string{"Colt M4A1 5.56x45 assault rifle", "M4A1"}}

	s := NewStore(disk, fetcher, "1.3.2", time.Hour)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.calls)
	}
	if got := s.Names(); len(got) != 2 {
		t.Errorf("expected fetched names, got %v", got)
	}

	// the new snapshot is persisted under the running version
	data, ok := disk.Get(snapshotKey)
	if !ok {
		t.Fatal("expected persisted snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Version != "1.3.2" {
		t.Errorf("expected snapshot version 1.3.2, got %s", snap.Version)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("expected fetch time recorded")
	}
}

func TestLoadRefetchesStaleSnapshot(t *testing.T) {
	disk := cache.NewDiskCache(t.TempDir(), -1)
	writeSnapshot(t, disk, Snapshot{Version: "1.0.0", Items: []string{"Old"}, FetchedAt: time.Now().Add(-48 * time.Hour)})
	fetcher := &fakeFetcher{names: []string{"New"}}

	s := NewStore(disk, fetcher, "1.0.0", 24*time.Hour)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected stale snapshot to be refetched")
	}
	if got := s.Names(); len(got) != 1 || got[0] != "New" {
		t.Errorf("expected fresh names, got %v", got)
	}
}

func TestLoadMissingSnapshotFetches(t *testing.T) {
	disk := cache.NewDiskCache(t.TempDir(), -1)
	fetcher := &fakeFetcher{names: []string{"Salewa first aid kit", "Salewa"}}

	s := NewStore(disk, fetcher, "1.0.0", 0)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st := s.Stats(); st.Source != SourceFetch || st.Size != 2 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestLoadFetchFailureLeavesCorpusEmpty(t *testing.T) {
	disk := cache.NewDiskCache(t.TempDir(), -1)
	fetcher := &fakeFetcher{err: errors.New("connection refused")}

	s := NewStore(disk, fetcher, "1.0.0", time.Hour)
	err := s.Load(context.Background())
	if !errors.Is(err, apperrors.ErrCorpusUnavailable) {
		t.Fatalf("expected CorpusUnavailable, got %v", err)
	}
	if got := s.Names(); len(got) != 0 {
		t.Errorf("expected empty corpus, got %v", got)
	}
	if st := s.Stats(); st.Source != SourceNone {
		t.Errorf("expected source none, got %s", st.Source)
	}
}

func TestPersistFailureIsNotFatal(t *testing.T) {
	disk := readOnlyStore{cache.NewDiskCache(t.TempDir(), -1)}
	fetcher := &fakeFetcher{names: []string{"LEDX Skin Transilluminator", "LEDX"}}

	s := NewStore(disk, fetcher, "1.0.0", time.Hour)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("expected persist failure to be ignored, got %v", err)
	}
	if got := s.Names(); len(got) != 2 {
		t.Errorf("expected fetched names in memory, got %v", got)
	}
}

func TestRefreshKeepsCorpusOnFailure(t *testing.T) {
	disk := cache.NewDiskCache(t.TempDir(), -1)
	fetcher := &fakeFetcher{names: []string{"Bitcoin"}}

	s := NewStore(disk, fetcher, "1.0.0", time.Hour)
	if err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	fetcher.err = errors.New("503")
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := s.Names(); len(got) != 1 || got[0] != "Bitcoin" {
		t.Errorf("expected previous corpus kept, got %v", got)
	}
}

func TestRefreshIgnoresSnapshot(t *testing.T) {
	disk := cache.NewDiskCache(t.TempDir(), -1)
	writeSnapshot(t, disk, Snapshot{Version: "1.0.0", Items: []string{"Old"}, FetchedAt: time.Now()})
	fetcher := &fakeFetcher{names: []string{"New"}}

	s := NewStore(disk, fetcher, "1.0.0", time.Hour)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected refresh to fetch")
	}
}

func TestMerge(t *testing.T) {
	got := Merge([]string{"M4A1", " Bitcoin ", "", "m4a1", "Colt M4A1 5.56x45 assault rifle", "  "})
	want := []string{"Bitcoin", "Colt M4A1 5.56x45 assault rifle", "M4A1"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
