package forge

import "github.com/cogfoundry/forge/core"

// Statistics is a point-in-time census of the forge's collections.
type Statistics struct {
	Agents         int                      `json:"agents"`
	AgentsByState  map[core.AgentState]int  `json:"agents_by_state"`
	Memories       int                      `json:"memories"`
	MemoriesByType map[core.MemoryType]int  `json:"memories_by_type"`
	Workflows      int                      `json:"workflows"`
	Synergies      int                      `json:"synergies"`
}

// Statistics returns counts of agents, memories, workflows and synergies,
// with breakdowns by agent state and memory type.
func (f *Forge) Statistics() Statistics {
	return Statistics{
		Agents:         f.registry.Count(),
		AgentsByState:  f.registry.CountByState(),
		Memories:       f.memory.Len(),
		MemoriesByType: f.memory.CountByType(),
		Workflows:      f.workflows.Count(),
		Synergies:      f.synergies.Count(),
	}
}
