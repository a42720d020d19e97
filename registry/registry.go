// Package registry tracks cognitive agent identity, lifecycle state and
// capacity. It is the only component that talks to the model runtime manager:
// creating an agent downloads and loads its model, removing one releases the
// handle.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/logging"
)

// DefaultMaxAgents caps the registry when no explicit limit is configured.
const DefaultMaxAgents = 10

// Options configure the registry.
type Options struct {
	// MaxAgents caps the number of concurrently registered agents.
	MaxAgents int
	Logger    logging.Logger
}

// Registry is the authoritative owner of all Agent instances for one forge.
// Safe for concurrent use; model download/load happen outside the lock so a
// slow runtime call never blocks unrelated agents.
type Registry struct {
	mu      sync.RWMutex
	agents  map[string]*core.Agent
	pending int // slots reserved by in-flight CreateAgent calls

	runtime   core.RuntimeManager
	maxAgents int
	logger    logging.Logger
}

// New constructs a registry backed by the given runtime manager.
func New(runtime core.RuntimeManager, optFns ...func(o *Options)) *Registry {
	opts := Options{MaxAgents: DefaultMaxAgents, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAgents <= 0 {
		opts.MaxAgents = DefaultMaxAgents
	}
	return &Registry{
		agents:    make(map[string]*core.Agent),
		runtime:   runtime,
		maxAgents: opts.MaxAgents,
		logger:    opts.Logger,
	}
}

// CreateAgent registers a new agent bound to a freshly loaded model. Fails
// with CapacityError when the registry is full. The capacity slot is reserved
// before the runtime calls begin so concurrent creations cannot oversubscribe.
func (r *Registry) CreateAgent(ctx context.Context, name string, agentType core.AgentType, modelAlias string, config core.Metadata) (*core.Agent, error) {
	r.mu.Lock()
	if len(r.agents)+r.pending >= r.maxAgents {
		max := r.maxAgents
		r.mu.Unlock()
		return nil, &core.CapacityError{Max: max}
	}
	r.pending++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.pending--
		r.mu.Unlock()
	}()

	if err := r.runtime.DownloadModel(ctx, modelAlias); err != nil {
		return nil, err
	}
	handle, err := r.runtime.LoadModel(ctx, modelAlias)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	agent := &core.Agent{
		ID:      core.NewID("agent"),
		Name:    name,
		Type:    agentType,
		Model:   handle,
		Config:  config.Clone(),
		State:   core.AgentStateIdle,
		Created: now,
		Updated: now,
	}

	r.mu.Lock()
	r.agents[agent.ID] = agent
	r.mu.Unlock()

	r.logger.Info("agent created", "agent_id", agent.ID, "name", name, "type", string(agentType), "model_alias", modelAlias)
	return agent.Clone(), nil
}

// RemoveAgent deletes an agent and releases its model handle. Unload failures
// are logged and swallowed; the agent is removed regardless.
func (r *Registry) RemoveAgent(ctx context.Context, id string) error {
	r.mu.Lock()
	agent, ok := r.agents[id]
	if !ok {
		r.mu.Unlock()
		return &core.NotFoundError{Kind: "agent", ID: id}
	}
	delete(r.agents, id)
	r.mu.Unlock()

	if err := r.runtime.UnloadModel(ctx, agent.Model.ID); err != nil {
		r.logger.Warn("failed to unload model for removed agent", "agent_id", id, "handle_id", agent.Model.ID, "error", err)
	}
	r.logger.Info("agent removed", "agent_id", id)
	return nil
}

// GetAgent returns a clone of the agent. Pure read, no side effects.
func (r *Registry) GetAgent(id string) (*core.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "agent", ID: id}
	}
	return agent.Clone(), nil
}

// ListAgents returns clones of all agents ordered by creation time.
func (r *Registry) ListAgents() []*core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*core.Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		out = append(out, agent.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// CountByState returns the number of agents per lifecycle state.
func (r *Registry) CountByState() map[core.AgentState]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[core.AgentState]int)
	for _, agent := range r.agents {
		out[agent.State]++
	}
	return out
}

// SetAgentState applies an external state override. Supervisors use this to
// park an agent in busy (ineligible for reasoning) or flag it as errored
// without destroying it. The forge itself never sets busy.
func (r *Registry) SetAgentState(id string, state core.AgentState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return &core.NotFoundError{Kind: "agent", ID: id}
	}
	agent.State = state
	agent.Updated = time.Now().UTC()
	return nil
}

// BeginReasoning atomically transitions an idle agent to active and returns
// a clone of it. Fails with NotFoundError for unknown ids and with
// UnavailableError, naming the current state, when the agent is not idle.
// At most one reasoning call can hold an agent at a time.
func (r *Registry) BeginReasoning(id string) (*core.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "agent", ID: id}
	}
	if agent.State != core.AgentStateIdle {
		return nil, &core.UnavailableError{AgentID: id, State: agent.State}
	}
	agent.State = core.AgentStateActive
	agent.Updated = time.Now().UTC()
	return agent.Clone(), nil
}

// EndReasoning restores an agent to idle. Called on every exit path of a
// reasoning call, success or failure, so a failed call never strands an
// agent in active. Removal of the agent mid-call makes this a no-op.
func (r *Registry) EndReasoning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return
	}
	agent.State = core.AgentStateIdle
	agent.Updated = time.Now().UTC()
}
