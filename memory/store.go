// Package memory implements the forge's typed, ranked, evictable store of
// content fragments. Retrieval filters by memory type and optional substring
// query, ranks by a weighted blend of importance and recency, and mutates
// access bookkeeping as an observable side effect of reading.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/logging"
)

const (
	// DefaultMaxEntries triggers eviction checks once exceeded.
	DefaultMaxEntries = 10000
	// DefaultRetentionDays is the age an entry must exceed before it
	// becomes an eviction candidate.
	DefaultRetentionDays = 30

	// Ranking weights: combined = importanceWeight*importance +
	// recencyWeight*recencyRank.
	importanceWeight = 0.7
	recencyWeight    = 0.3

	// Entries at or above this importance are never evicted.
	evictionImportanceCeiling = 0.3
	// Eviction removes this many entries beyond the overflow so the store
	// does not re-evict on every subsequent write.
	evictionSafetyMargin = 100
)

// Options configure the store.
type Options struct {
	MaxEntries    int
	RetentionDays int
	Logger        logging.Logger

	// Clock overrides the time source; nil means time.Now. Tests use it to
	// control recency ranking and eviction age.
	Clock func() time.Time
}

// Store is a process-local memory store. Safe for concurrent use; mutating
// access (store, retrieve, evict) is serialized per store instance.
type Store struct {
	mu      sync.Mutex
	entries map[string]*core.MemoryEntry

	maxEntries int
	retention  time.Duration
	logger     logging.Logger
	now        func() time.Time
}

// NewStore constructs an empty memory store.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{
		MaxEntries:    DefaultMaxEntries,
		RetentionDays: DefaultRetentionDays,
		Logger:        logging.NoOpLogger{},
		Clock:         time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = DefaultRetentionDays
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Store{
		entries:    make(map[string]*core.MemoryEntry),
		maxEntries: opts.MaxEntries,
		retention:  time.Duration(opts.RetentionDays) * 24 * time.Hour,
		logger:     opts.Logger,
		now:        opts.Clock,
	}
}

// StoreMemory adds a new entry. Importance is clamped to [0,1]; the access
// counter starts at zero. An eviction check runs after every store.
func (s *Store) StoreMemory(memoryType core.MemoryType, content string, metadata core.Metadata, importance float64) (*core.MemoryEntry, error) {
	now := s.now().UTC()
	entry := &core.MemoryEntry{
		ID:           core.NewID("memory"),
		Type:         memoryType,
		Content:      content,
		Metadata:     metadata.Clone(),
		Importance:   core.ClampScore(importance),
		Created:      now,
		AccessCount:  0,
		LastAccessed: now,
	}

	s.mu.Lock()
	s.entries[entry.ID] = entry
	s.evictLocked()
	s.mu.Unlock()

	s.logger.Debug("memory stored", "memory_id", entry.ID, "type", string(memoryType), "importance", entry.Importance)
	return entry.Clone(), nil
}

// RetrieveMemory returns up to limit entries of the given type, optionally
// filtered by a case-insensitive substring match of query against content,
// ranked by combined importance/recency score. Every returned entry has its
// access counter incremented by exactly one and its last-accessed timestamp
// refreshed. limit <= 0 means no truncation.
func (s *Store) RetrieveMemory(memoryType core.MemoryType, query string, limit int) ([]*core.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loweredQuery := strings.ToLower(query)
	matched := make([]*core.MemoryEntry, 0)
	for _, entry := range s.entries {
		if entry.Type != memoryType {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(entry.Content), loweredQuery) {
			continue
		}
		matched = append(matched, entry)
	}

	rankEntries(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	now := s.now().UTC()
	results := make([]*core.MemoryEntry, len(matched))
	for i, entry := range matched {
		entry.AccessCount++
		entry.LastAccessed = now
		results[i] = entry.Clone()
	}
	return results, nil
}

// rankEntries sorts entries descending by combined score. The recency rank is
// derived purely from timestamp order (more recent = higher), with timestamp
// ties broken by importance, then normalized to [0,1] before blending.
func rankEntries(entries []*core.MemoryEntry) {
	n := len(entries)
	if n < 2 {
		return
	}

	byRecency := make([]*core.MemoryEntry, n)
	copy(byRecency, entries)
	sort.SliceStable(byRecency, func(i, j int) bool {
		if !byRecency[i].Created.Equal(byRecency[j].Created) {
			return byRecency[i].Created.After(byRecency[j].Created)
		}
		return byRecency[i].Importance > byRecency[j].Importance
	})
	recencyRank := make(map[string]float64, n)
	for i, entry := range byRecency {
		recencyRank[entry.ID] = 1 - float64(i)/float64(n-1)
	}

	score := func(e *core.MemoryEntry) float64 {
		return importanceWeight*e.Importance + recencyWeight*recencyRank[e.ID]
	}
	sort.SliceStable(entries, func(i, j int) bool { return score(entries[i]) > score(entries[j]) })
}

// evictLocked enforces the configured maximum. Only entries older than the
// retention window with importance below the ceiling are candidates; they are
// removed lowest-importance first, overflow plus a fixed safety margin at a
// time. When no entry satisfies both thresholds the store stays over its
// maximum; that is an accepted limitation, not a fault.
func (s *Store) evictLocked() {
	overflow := len(s.entries) - s.maxEntries
	if overflow <= 0 {
		return
	}

	cutoff := s.now().UTC().Add(-s.retention)
	candidates := make([]*core.MemoryEntry, 0)
	for _, entry := range s.entries {
		if entry.Created.Before(cutoff) && entry.Importance < evictionImportanceCeiling {
			candidates = append(candidates, entry)
		}
	}
	if len(candidates) == 0 {
		return
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Importance < candidates[j].Importance
	})

	removeCount := overflow + evictionSafetyMargin
	if removeCount > len(candidates) {
		removeCount = len(candidates)
	}
	for _, entry := range candidates[:removeCount] {
		delete(s.entries, entry.ID)
	}
	s.logger.Info("memory eviction completed", "removed", removeCount, "remaining", len(s.entries))
}

// Delete removes an entry by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return &core.NotFoundError{Kind: "memory", ID: id}
	}
	delete(s.entries, id)
	return nil
}

// Get returns a clone of an entry without touching access bookkeeping.
func (s *Store) Get(id string) (*core.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "memory", ID: id}
	}
	return entry.Clone(), nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CountByType returns the number of entries per memory type.
func (s *Store) CountByType() map[core.MemoryType]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[core.MemoryType]int)
	for _, entry := range s.entries {
		out[entry.Type]++
	}
	return out
}
