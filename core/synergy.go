package core

import "time"

// CollaborationType declares the style of a registered agent collaboration.
type CollaborationType string

// Recognized collaboration types.
const (
	CollaborationConsensus  CollaborationType = "consensus"
	CollaborationDebate     CollaborationType = "debate"
	CollaborationDelegation CollaborationType = "delegation"
	CollaborationParallel   CollaborationType = "parallel"
	CollaborationSequential CollaborationType = "sequential"
)

// Synergy is a registered grouping of agents with a declared collaboration
// style. It records structural membership and strategy parameters only; no
// negotiation rounds are executed. SharedContext starts empty and is reserved
// for future round-based protocols. AgentIDs are back-references into the
// registry, never ownership.
type Synergy struct {
	ID            string            `json:"id"`
	AgentIDs      []string          `json:"agent_ids"`
	Type          CollaborationType `json:"type"`
	Strategy      Metadata          `json:"strategy,omitempty"`
	SharedContext Metadata          `json:"shared_context"`
	Created       time.Time         `json:"created"`
}

// Clone returns a deep copy of the synergy.
func (s *Synergy) Clone() *Synergy {
	clone := *s
	clone.AgentIDs = append([]string(nil), s.AgentIDs...)
	clone.Strategy = s.Strategy.Clone()
	clone.SharedContext = s.SharedContext.Clone()
	return &clone
}
