package core

import "time"

// MemoryType classifies a stored memory fragment.
type MemoryType string

// Recognized memory types.
const (
	MemoryWorking    MemoryType = "working"
	MemoryEpisodic   MemoryType = "episodic"
	MemorySemantic   MemoryType = "semantic"
	MemoryProcedural MemoryType = "procedural"
)

// MemoryEntry is a timestamped, importance-scored content fragment.
// Importance is always clamped to [0,1]. AccessCount and LastAccessed are
// updated on every retrieval as an observable side effect of reading.
type MemoryEntry struct {
	ID           string     `json:"id"`
	Type         MemoryType `json:"type"`
	Content      string     `json:"content"`
	Metadata     Metadata   `json:"metadata,omitempty"`
	Importance   float64    `json:"importance"`
	Created      time.Time  `json:"created"`
	AccessCount  int        `json:"access_count"`
	LastAccessed time.Time  `json:"last_accessed"`
}

// Clone returns a deep copy of the entry.
func (e *MemoryEntry) Clone() *MemoryEntry {
	clone := *e
	clone.Metadata = e.Metadata.Clone()
	return &clone
}
