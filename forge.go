// Package forge provides a high-level façade over the orchestration core:
// agent registry, memory store, reasoning invoker, workflow orchestrator and
// synergy coordinator. Most applications interact with this package by:
//  1. Creating a Forge via New() (optionally overriding the runtime manager,
//     inference provider and logger)
//  2. Creating one or more cognitive agents
//  3. Seeding the memory store and invoking reasoning directly or through
//     dependency-gated workflows
//
// Each Forge instance exclusively owns its agent, memory, workflow and
// synergy collections; multiple isolated forges can coexist in one process.
// All defaults are safe for local development and testing; production
// deployments supply a network-backed inference provider (model/openai or
// model/anthropic), an external runtime manager and a structured logger.
package forge

import (
	"context"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/logging"
	"github.com/cogfoundry/forge/memory"
	"github.com/cogfoundry/forge/model"
	"github.com/cogfoundry/forge/reasoning"
	"github.com/cogfoundry/forge/registry"
	"github.com/cogfoundry/forge/runtime"
	"github.com/cogfoundry/forge/synergy"
	"github.com/cogfoundry/forge/workflow"
)

// Options configures the Forge instance.
type Options struct {
	// Config carries the recognized forge options (capacity, retention,
	// timeouts, collaboration gating, debug mode).
	Config Config

	// Runtime is the model runtime manager collaborator. Defaults to the
	// in-process implementation.
	Runtime core.RuntimeManager

	// Provider is the model inference collaborator. Defaults to a
	// deterministic mock suitable for tests and demos.
	Provider model.Provider

	// Logger defaults to a NoOp logger, or a debug-level slog logger when
	// Config.DebugMode is set.
	Logger logging.Logger
}

// Forge aggregates the orchestration core behind a single owner object.
type Forge struct {
	cfg      Config
	logger   logging.Logger
	runtime  core.RuntimeManager
	provider model.Provider

	registry  *registry.Registry
	memory    *memory.Store
	invoker   *reasoning.Invoker
	workflows *workflow.Orchestrator
	synergies *synergy.Coordinator
}

// New creates a Forge with optional overrides. Any unset collaborator is
// initialized with an in-process implementation.
func New(optFns ...func(o *Options)) *Forge {
	opts := Options{Config: DefaultConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Config.normalize()
	if opts.Runtime == nil {
		opts.Runtime = runtime.NewManager()
	}
	if opts.Provider == nil {
		opts.Provider = model.NewMockProvider()
	}
	if opts.Logger == nil {
		if opts.Config.DebugMode {
			opts.Logger = logging.NewSlogLogger(logging.LogLevelDebug, "text")
		} else {
			opts.Logger = logging.NoOpLogger{}
		}
	}

	reg := registry.New(opts.Runtime, func(o *registry.Options) {
		o.MaxAgents = opts.Config.MaxConcurrentAgents
		o.Logger = opts.Logger
	})
	mem := memory.NewStore(func(o *memory.Options) {
		o.MaxEntries = opts.Config.MaxMemoryEntries
		o.RetentionDays = opts.Config.MemoryRetentionDays
		o.Logger = opts.Logger
	})
	invoker := reasoning.NewInvoker(reg, mem, opts.Provider, func(o *reasoning.Options) {
		o.Logger = opts.Logger
	})
	workflows := workflow.NewOrchestrator(invoker, mem, func(o *workflow.Options) {
		o.Timeout = opts.Config.WorkflowTimeout
		o.Logger = opts.Logger
	})
	synergies := synergy.NewCoordinator(reg, func(o *synergy.Options) {
		o.Enabled = opts.Config.EnableCollaboration
		o.Logger = opts.Logger
	})

	return &Forge{
		cfg:       opts.Config,
		logger:    opts.Logger,
		runtime:   opts.Runtime,
		provider:  opts.Provider,
		registry:  reg,
		memory:    mem,
		invoker:   invoker,
		workflows: workflows,
		synergies: synergies,
	}
}

// Registry exposes the agent registry for supervisor-level operations such as
// SetAgentState.
func (f *Forge) Registry() *registry.Registry { return f.registry }

// Memory exposes the underlying memory store.
func (f *Forge) Memory() *memory.Store { return f.memory }

// Workflows exposes the workflow orchestrator.
func (f *Forge) Workflows() *workflow.Orchestrator { return f.workflows }

// Synergies exposes the synergy coordinator.
func (f *Forge) Synergies() *synergy.Coordinator { return f.synergies }

// CreateAgent registers a new cognitive agent bound to a loaded model.
func (f *Forge) CreateAgent(ctx context.Context, name string, agentType core.AgentType, modelAlias string, config core.Metadata) (*core.Agent, error) {
	return f.registry.CreateAgent(ctx, name, agentType, modelAlias, config)
}

// RemoveAgent destroys an agent and releases its model handle.
func (f *Forge) RemoveAgent(ctx context.Context, id string) error {
	return f.registry.RemoveAgent(ctx, id)
}

// GetAgent returns an agent by id.
func (f *Forge) GetAgent(id string) (*core.Agent, error) { return f.registry.GetAgent(id) }

// ListAgents returns all agents ordered by creation time.
func (f *Forge) ListAgents() []*core.Agent { return f.registry.ListAgents() }

// StoreMemory adds a memory entry.
func (f *Forge) StoreMemory(memoryType core.MemoryType, content string, metadata core.Metadata, importance float64) (*core.MemoryEntry, error) {
	return f.memory.StoreMemory(memoryType, content, metadata, importance)
}

// RetrieveMemory returns ranked entries of the given type matching query.
func (f *Forge) RetrieveMemory(memoryType core.MemoryType, query string, limit int) ([]*core.MemoryEntry, error) {
	return f.memory.RetrieveMemory(memoryType, query, limit)
}

// Reason performs one reasoning call for an agent.
func (f *Forge) Reason(ctx context.Context, agentID string, req core.ReasoningRequest) (*core.ReasoningResponse, error) {
	return f.invoker.Reason(ctx, agentID, req)
}

// CreateWorkflow registers a pending workflow from step declarations.
func (f *Forge) CreateWorkflow(name, description string, steps []workflow.StepSpec, input core.Metadata) (*core.Workflow, error) {
	return f.workflows.CreateWorkflow(name, description, steps, input)
}

// ExecuteWorkflow runs a pending workflow to completion or failure.
func (f *Forge) ExecuteWorkflow(ctx context.Context, id string) (*core.Workflow, error) {
	return f.workflows.ExecuteWorkflow(ctx, id)
}

// CancelWorkflow requests cooperative cancellation of a running workflow.
func (f *Forge) CancelWorkflow(id string) error { return f.workflows.Cancel(id) }

// CreateSynergy registers a collaboration grouping across existing agents.
func (f *Forge) CreateSynergy(agentIDs []string, collaborationType core.CollaborationType, strategy core.Metadata) (*core.Synergy, error) {
	return f.synergies.CreateSynergy(agentIDs, collaborationType, strategy)
}
