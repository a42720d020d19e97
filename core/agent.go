package core

import "time"

// AgentType classifies the role a cognitive agent plays in the forge.
type AgentType string

// Recognized agent types.
const (
	AgentTypeReasoning     AgentType = "reasoning"
	AgentTypeMemory        AgentType = "memory"
	AgentTypePlanning      AgentType = "planning"
	AgentTypeExecution     AgentType = "execution"
	AgentTypeMonitoring    AgentType = "monitoring"
	AgentTypeCollaboration AgentType = "collaboration"
)

// AgentState is the lifecycle state of an agent.
//
// Transitions: idle -> active when a reasoning call begins, and back to idle
// on every exit path of that call. busy is never set by the forge itself; it
// is an external supervisor override making an agent temporarily ineligible
// for reasoning without tearing it down. error is reserved for unrecoverable
// faults.
type AgentState string

// Agent lifecycle states.
const (
	AgentStateIdle   AgentState = "idle"
	AgentStateActive AgentState = "active"
	AgentStateBusy   AgentState = "busy"
	AgentStateError  AgentState = "error"
)

// ModelHandle identifies a model artifact loaded by the runtime manager.
// The handle is opaque to the forge; its metadata (model name, alias) is
// consumed only by inference provider adapters.
type ModelHandle struct {
	ID       string   `json:"id"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Agent is a named, stateful handle bound to one loaded model. Agents are
// owned exclusively by the registry; workflow steps and synergies reference
// them by id and never control their lifecycle.
type Agent struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    AgentType   `json:"type"`
	Model   ModelHandle `json:"model"`
	Config  Metadata    `json:"config,omitempty"`
	State   AgentState  `json:"state"`
	Created time.Time   `json:"created"`
	Updated time.Time   `json:"updated"`
}

// Clone returns a deep copy safe for callers to inspect or mutate without
// affecting registry-owned state.
func (a *Agent) Clone() *Agent {
	clone := *a
	clone.Config = a.Config.Clone()
	clone.Model.Metadata = a.Model.Metadata.Clone()
	return &clone
}
