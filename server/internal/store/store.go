package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/decisionstack/decisionstack/pkg/types"
)

// Entry is a solve summary together with the time it was recorded.
type Entry struct {
	Summary   types.SolveSummary
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory feed of recent solves, keyed by request
// ID. A background goroutine (Run) periodically evicts entries older than
// the configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// TTL returns the retention window.
func (s *Store) TTL() time.Duration { return s.ttl }

// Put records sum under sum.ID, stamping SolvedAt if it is empty.
func (s *Store) Put(sum types.SolveSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if sum.SolvedAt == "" {
		sum.SolvedAt = now.UTC().Format(time.RFC3339)
	}
	s.data[sum.ID] = &Entry{Summary: sum, UpdatedAt: now}
}

// Get returns the live Entry for id. Entries past the TTL that have not yet
// been evicted are reported as missing.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok || !e.UpdatedAt.After(s.now().Add(-s.ttl)) {
		return Entry{}, false
	}
	return *e, true
}

// List returns copies of all entries within the TTL, newest first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]Entry, 0, len(s.data))
	for _, e := range s.data {
		if e.UpdatedAt.After(cutoff) {
			out = append(out, *e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].Summary.ID < out[j].Summary.ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Summaries returns List as bare summaries, the shape the API and the
// WebSocket feed publish.
func (s *Store) Summaries() []types.SolveSummary {
	entries := s.List()
	out := make([]types.SolveSummary, len(entries))
	for i, e := range entries {
		out[i] = e.Summary
	}
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes entries whose UpdatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, e := range s.data {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL interval
// (minimum 1 second) so entries are evicted promptly. Run blocks until ctx is
// cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale solve summaries", "count", n)
			}
		}
	}
}
