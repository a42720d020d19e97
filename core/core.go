package core

import "github.com/google/uuid"

// NewID generates a unique identifier prefixed with an entity kind, e.g.
// "agent-2f1c...". The prefix keeps ids self-describing in logs and
// cross-references (workflow steps and synergies refer to agents by id only).
func NewID(kind string) string { return kind + "-" + uuid.NewString() }

// ClampScore restricts a score to the [0,1] range. Importance and confidence
// values are clamped at every write so stored entries never carry
// out-of-range scores.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
