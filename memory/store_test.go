package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/cogfoundry/forge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests control entry timestamps.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(clock *fakeClock, optFns ...func(o *Options)) *Store {
	fns := append([]func(o *Options){func(o *Options) { o.Clock = clock.Now }}, optFns...)
	return NewStore(fns...)
}

func TestStoreMemory_RoundTripByType(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(clock)

	stored, err := s.StoreMemory(core.MemorySemantic, "Paris is the capital of France", nil, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AccessCount)

	byType, err := s.RetrieveMemory(core.MemorySemantic, "", 10)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, stored.ID, byType[0].ID)

	otherType, err := s.RetrieveMemory(core.MemoryEpisodic, "", 10)
	require.NoError(t, err)
	assert.Empty(t, otherType)
}

func TestStoreMemory_ClampsImportance(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(clock)

	entry, err := s.StoreMemory(core.MemoryWorking, "x", nil, 3.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, entry.Importance)

	entry, err = s.StoreMemory(core.MemoryWorking, "y", nil, -1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, entry.Importance)
}

func TestRetrieveMemory_QueryIsCaseInsensitiveSubstring(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(clock)

	_, err := s.StoreMemory(core.MemorySemantic, "The Eiffel Tower is in Paris", nil, 0.5)
	require.NoError(t, err)
	_, err = s.StoreMemory(core.MemorySemantic, "Berlin is in Germany", nil, 0.5)
	require.NoError(t, err)

	results, err := s.RetrieveMemory(core.MemorySemantic, "PARIS", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "Eiffel")
}

func TestRetrieveMemory_RanksByImportanceWhenRecencyEqual(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(clock)

	_, err := s.StoreMemory(core.MemorySemantic, "low importance", nil, 0.2)
	require.NoError(t, err)
	_, err = s.StoreMemory(core.MemorySemantic, "high importance", nil, 0.9)
	require.NoError(t, err)

	results, err := s.RetrieveMemory(core.MemorySemantic, "", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "high importance", results[0].Content)
}

func TestRetrieveMemory_RanksByRecencyWhenImportanceEqual(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(clock)

	_, err := s.StoreMemory(core.MemorySemantic, "older", nil, 0.5)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = s.StoreMemory(core.MemorySemantic, "newer", nil, 0.5)
	require.NoError(t, err)

	results, err := s.RetrieveMemory(core.MemorySemantic, "", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "newer", results[0].Content)
}

func TestRetrieveMemory_TruncatesToLimit(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(clock)

	for i := 0; i < 5; i++ {
		_, err := s.StoreMemory(core.MemorySemantic, "entry", nil, 0.5)
		require.NoError(t, err)
	}
	results, err := s.RetrieveMemory(core.MemorySemantic, "", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRetrieveMemory_IncrementsAccessCountExactlyOnce(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(clock)

	stored, err := s.StoreMemory(core.MemorySemantic, "tracked", nil, 0.5)
	require.NoError(t, err)

	first, err := s.RetrieveMemory(core.MemorySemantic, "", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, first[0].AccessCount)

	clock.Advance(time.Minute)
	second, err := s.RetrieveMemory(core.MemorySemantic, "", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, second[0].AccessCount)
	assert.Equal(t, clock.now.UTC(), second[0].LastAccessed)

	// The unmutated creation timestamp still drives recency.
	assert.Equal(t, stored.Created, second[0].Created)
}

func TestEviction_RemovesOldUnimportantEntriesFirst(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(clock, func(o *Options) {
		o.MaxEntries = 10
		o.RetentionDays = 30
	})

	// Old, low-importance entries: eligible candidates.
	for i := 0; i < 8; i++ {
		_, err := s.StoreMemory(core.MemoryWorking, "stale", nil, 0.1)
		require.NoError(t, err)
	}
	// Old but important: never evicted.
	_, err := s.StoreMemory(core.MemorySemantic, "keep me", nil, 0.9)
	require.NoError(t, err)

	clock.Advance(40 * 24 * time.Hour)
	for i := 0; i < 3; i++ {
		_, err := s.StoreMemory(core.MemoryWorking, "fresh", nil, 0.1)
		require.NoError(t, err)
	}

	// Store exceeded 10: all 8 stale candidates get removed (overflow plus
	// safety margin exceeds the candidate count).
	assert.Equal(t, 4, s.Len())
	kept, err := s.RetrieveMemory(core.MemorySemantic, "keep me", 10)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestEviction_NoCandidatesLeavesStoreOverMaximum(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(clock, func(o *Options) {
		o.MaxEntries = 5
		o.RetentionDays = 30
	})

	// All entries are recent, so none satisfies the age threshold and the
	// store stays over its maximum.
	for i := 0; i < 8; i++ {
		_, err := s.StoreMemory(core.MemoryWorking, "recent", nil, 0.1)
		require.NoError(t, err)
	}
	assert.Equal(t, 8, s.Len())
}

func TestDelete(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(clock)

	entry, err := s.StoreMemory(core.MemoryWorking, "x", nil, 0.5)
	require.NoError(t, err)
	require.NoError(t, s.Delete(entry.ID))

	var notFound *core.NotFoundError
	err = s.Delete(entry.ID)
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "memory", notFound.Kind)
}

func TestCountByType(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(clock)

	_, err := s.StoreMemory(core.MemorySemantic, "a", nil, 0.5)
	require.NoError(t, err)
	_, err = s.StoreMemory(core.MemorySemantic, "b", nil, 0.5)
	require.NoError(t, err)
	_, err = s.StoreMemory(core.MemoryEpisodic, "c", nil, 0.5)
	require.NoError(t, err)

	counts := s.CountByType()
	assert.Equal(t, 2, counts[core.MemorySemantic])
	assert.Equal(t, 1, counts[core.MemoryEpisodic])
}
