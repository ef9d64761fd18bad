// Package corpus keeps the set of known item names used for fuzzy matching.
//
// The set is persisted through the disk cache tagged with the application
// version that fetched it. A snapshot from another version, or one older than
// the configured max age, is refetched.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/pricelens/internal/cache"
	apperrors "github.com/ppiankov/pricelens/internal/errors"
)

const snapshotKey = "corpus"

// Fetcher returns the full list of catalog names
type Fetcher interface {
	ItemNames(ctx context.Context) ([]string, error)
}

// Snapshot is the persisted corpus
type Snapshot struct {
	Version   string    `json:"version"`
	Items     []string  `json:"items"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Source records where the loaded corpus came from
type Source string

const (
	SourceNone  Source = "none"
	SourceDisk  Source = "disk"
	SourceFetch Source = "fetch"
)

// Stats describes the loaded corpus
type Stats struct {
	Size      int
	Version   string
	FetchedAt time.Time
	Source    Source
}

// Store loads, refreshes and serves the corpus. Safe for concurrent use.
type Store struct {
	disk    cache.Store
	fetcher Fetcher
	version string
	maxAge  time.Duration

	mu    sync.RWMutex
	names []string
	stats Stats
}

// NewStore creates a store. maxAge <= 0 disables age-based refetching.
func NewStore(disk cache.Store, fetcher Fetcher, version string, maxAge time.Duration) *Store {
	return &Store{
		disk:    disk,
		fetcher: fetcher,
		version: version,
		maxAge:  maxAge,
		stats:   Stats{Source: SourceNone},
	}
}

// Load uses the persisted snapshot when it was written by this version and is
// fresh, and fetches otherwise. A fetch failure without a usable snapshot leaves
// the corpus empty and returns a CorpusUnavailable error for logging; matching
// still works, it just falls back to the corrected text.
func (s *Store) Load(ctx context.Context) error {
	if snap, ok := s.readSnapshot(); ok {
		s.set(snap, SourceDisk)
		slog.Debug("corpus loaded from disk", "items", len(snap.Items), "version", snap.Version)
		return nil
	}
	return s.fetch(ctx)
}

// Refresh refetches from the catalog regardless of the persisted snapshot. On
// failure the current corpus is kept.
func (s *Store) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

// Names returns the current corpus. The slice must not be modified.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names
}

// Stats describes the current corpus
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Store) readSnapshot() (Snapshot, bool) {
	data, ok := s.disk.Get(snapshotKey)
	if !ok {
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("corpus snapshot unreadable, refetching", "error", err)
		return Snapshot{}, false
	}
	if snap.Version != s.version {
		slog.Info("corpus snapshot from another version, refetching", "snapshot", snap.Version, "running", s.version)
		return Snapshot{}, false
	}
	if s.maxAge > 0 && time.Since(snap.FetchedAt) > s.maxAge {
		slog.Info("corpus snapshot is stale, refetching", "fetched_at", snap.FetchedAt)
		return Snapshot{}, false
	}
	return snap, true
}

func (s *Store) fetch(ctx context.Context) error {
	start := time.Now()
	names, err := s.fetcher.ItemNames(ctx)
	if err != nil {
		err = apperrors.Wrap(err, apperrors.CorpusUnavailable, "cannot fetch item corpus")
		slog.Warn("corpus unavailable, matching degrades to corrected text", "error", err)
		return err
	}

	snap := Snapshot{
		Version:   s.version,
		Items:     Merge(names),
		FetchedAt: time.Now().UTC(),
	}
	s.set(snap, SourceFetch)
	slog.Info("corpus fetched", "items", len(snap.Items), "elapsed", time.Since(start).Round(time.Millisecond))

	if err := s.persist(snap); err != nil {
		slog.Warn("cannot persist corpus snapshot", "error", err)
	}
	return nil
}

func (s *Store) persist(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.disk.Set(snapshotKey, data, 0)
}

func (s *Store) set(snap Snapshot, source Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = snap.Items
	s.stats = Stats{
		Size:      len(snap.Items),
		Version:   snap.Version,
		FetchedAt: snap.FetchedAt,
		Source:    source,
	}
}

// Merge flattens full and short names into one sorted set, dropping blanks and
// case-insensitive duplicates
func Merge(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
