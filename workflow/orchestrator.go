// Package workflow executes dependency-gated multi-step plans. Scheduling is
// fixpoint based: each pass dispatches every pending step whose dependencies
// have completed, repeating until no step remains or no progress is possible.
// A pass that makes no progress with steps still pending is a dependency
// cycle, reported explicitly rather than silently skipping steps.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/logging"
	"github.com/cogfoundry/forge/memory"
	"github.com/cogfoundry/forge/reasoning"
)

// DefaultTimeout bounds a single workflow execution.
const DefaultTimeout = 5 * time.Minute

const (
	defaultRetrievalLimit    = 10
	defaultRetrievalType     = core.MemorySemantic
	defaultStorageType       = core.MemoryWorking
	defaultStorageImportance = 0.5
)

// StepSpec declares a workflow step before ids are assigned. DependsOn refers
// to the Names of other specs in the same workflow; CreateWorkflow rewrites
// them to the generated step ids.
type StepSpec struct {
	Name      string
	Type      core.StepType
	AgentID   string
	Input     core.Metadata
	DependsOn []string
}

// Options configure the orchestrator.
type Options struct {
	// Timeout is the per-execution deadline.
	Timeout time.Duration
	Logger  logging.Logger
}

// Orchestrator owns all Workflow instances for one forge and executes them.
// Independent workflows may execute concurrently; execution of a single
// workflow is sequential in its dependency-resolution loop.
type Orchestrator struct {
	mu        sync.RWMutex
	workflows map[string]*core.Workflow
	cancels   map[string]context.CancelFunc

	invoker *reasoning.Invoker
	memory  *memory.Store
	timeout time.Duration
	logger  logging.Logger
}

// NewOrchestrator constructs an orchestrator over the given invoker and
// memory store.
func NewOrchestrator(invoker *reasoning.Invoker, mem *memory.Store, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Timeout: DefaultTimeout, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Orchestrator{
		workflows: make(map[string]*core.Workflow),
		cancels:   make(map[string]context.CancelFunc),
		invoker:   invoker,
		memory:    mem,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
}

// CreateWorkflow registers a new pending workflow from step declarations. No
// execution happens yet. Dependency names must refer to other declared steps.
func (o *Orchestrator) CreateWorkflow(name, description string, specs []StepSpec, input core.Metadata) (*core.Workflow, error) {
	idByName := make(map[string]string, len(specs))
	steps := make([]*core.WorkflowStep, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("step %d has no name", i)
		}
		if _, exists := idByName[spec.Name]; exists {
			return nil, fmt.Errorf("duplicate step name %q", spec.Name)
		}
		id := core.NewID("step")
		idByName[spec.Name] = id
		steps[i] = &core.WorkflowStep{
			ID:      id,
			Name:    spec.Name,
			Type:    spec.Type,
			AgentID: spec.AgentID,
			Input:   spec.Input.Clone(),
			State:   core.StepPending,
		}
	}
	for i, spec := range specs {
		for _, dep := range spec.DependsOn {
			depID, ok := idByName[dep]
			if !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", spec.Name, dep)
			}
			if depID == steps[i].ID {
				return nil, fmt.Errorf("step %q depends on itself", spec.Name)
			}
			steps[i].DependsOn = append(steps[i].DependsOn, depID)
		}
	}

	wf := core.NewWorkflow(name, description, steps, input)

	o.mu.Lock()
	o.workflows[wf.ID] = wf
	o.mu.Unlock()

	o.logger.Info("workflow created", "workflow_id", wf.ID, "name", name, "steps", len(steps))
	return wf.Clone(), nil
}

// GetWorkflow returns a clone of the workflow.
func (o *Orchestrator) GetWorkflow(id string) (*core.Workflow, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	wf, ok := o.workflows[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "workflow", ID: id}
	}
	return wf.Clone(), nil
}

// ListWorkflows returns clones of all workflows ordered by creation time.
func (o *Orchestrator) ListWorkflows() []*core.Workflow {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*core.Workflow, 0, len(o.workflows))
	for _, wf := range o.workflows {
		out = append(out, wf.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Count returns the number of registered workflows.
func (o *Orchestrator) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.workflows)
}

// Cancel requests cooperative cancellation of a running workflow. The
// cancellation is observed between scheduler passes, not mid-step. Cancelling
// a workflow that is not executing is a no-op.
func (o *Orchestrator) Cancel(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.workflows[id]; !ok {
		return &core.NotFoundError{Kind: "workflow", ID: id}
	}
	if cancel, ok := o.cancels[id]; ok {
		cancel()
	}
	return nil
}

// ExecuteWorkflow runs a pending workflow to completion or failure. Already
// completed step outputs are retained on failure for diagnostics. The
// configured timeout bounds total execution; on expiry the workflow and any
// in-flight step are marked failed with TimeoutError.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, id string) (*core.Workflow, error) {
	o.mu.RLock()
	wf, ok := o.workflows[id]
	o.mu.RUnlock()
	if !ok {
		return nil, &core.NotFoundError{Kind: "workflow", ID: id}
	}
	if !wf.CompareAndSetState(core.WorkflowPending, core.WorkflowActive) {
		return wf.Clone(), fmt.Errorf("workflow %s is not pending", id)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	o.mu.Lock()
	o.cancels[id] = cancel
	o.mu.Unlock()
	defer func() {
		cancel()
		o.mu.Lock()
		delete(o.cancels, id)
		o.mu.Unlock()
	}()

	start := time.Now()
	err := o.run(ctx, wf)
	if err != nil {
		wf.SetState(core.WorkflowFailed)
		o.logger.Error("workflow failed", "workflow_id", id, "duration", time.Since(start), "error", err)
		return wf.Clone(), err
	}
	wf.SetState(core.WorkflowCompleted)
	o.logger.Info("workflow completed", "workflow_id", id, "duration", time.Since(start))
	return wf.Clone(), nil
}

// run drives the fixpoint scheduler until all steps complete, a step fails,
// or no eligible step remains while pending steps do.
func (o *Orchestrator) run(ctx context.Context, wf *core.Workflow) error {
	for {
		if err := o.checkInterrupt(ctx, wf); err != nil {
			return err
		}

		eligible, pending := wf.EligibleSteps()
		if len(pending) == 0 {
			return nil
		}
		if len(eligible) == 0 {
			wf.FailStep(pending...)
			return &core.DependencyCycleError{WorkflowID: wf.ID, StepIDs: pending}
		}

		for _, stepID := range eligible {
			step := wf.BeginStep(stepID)
			if step == nil {
				continue
			}
			stepStart := time.Now()
			output, err := o.executeStep(ctx, step)
			o.logStep(wf.ID, step, time.Since(stepStart), err)
			if err != nil {
				wf.FailStep(stepID)
				if errors.Is(err, context.DeadlineExceeded) {
					return &core.TimeoutError{WorkflowID: wf.ID, Limit: o.timeout}
				}
				return err
			}
			wf.CompleteStep(stepID, output)
		}
	}
}

// checkInterrupt observes timeout and cooperative cancellation between
// scheduler passes.
func (o *Orchestrator) checkInterrupt(ctx context.Context, wf *core.Workflow) error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.DeadlineExceeded):
		wf.FailActiveSteps()
		return &core.TimeoutError{WorkflowID: wf.ID, Limit: o.timeout}
	case err != nil:
		wf.FailActiveSteps()
		return fmt.Errorf("workflow %s canceled: %w", wf.ID, err)
	default:
		return nil
	}
}

// executeStep dispatches one step by kind. Only reasoning, memory-retrieval
// and memory-storage have executors; any other kind aborts the workflow.
func (o *Orchestrator) executeStep(ctx context.Context, step *core.WorkflowStep) (core.Metadata, error) {
	switch step.Type {
	case core.StepReasoning:
		return o.executeReasoning(ctx, step)
	case core.StepMemoryRetrieval:
		return o.executeRetrieval(step)
	case core.StepMemoryStorage:
		return o.executeStorage(step)
	default:
		return nil, &core.UnknownStepTypeError{StepID: step.ID, Type: step.Type}
	}
}

func (o *Orchestrator) executeReasoning(ctx context.Context, step *core.WorkflowStep) (core.Metadata, error) {
	req := core.ReasoningRequest{
		Problem:  step.Input.GetString("problem"),
		Context:  step.Input.GetString("context"),
		Evidence: step.Input.GetStringList("evidence"),
		Strategy: step.Input.GetString("strategy"),
	}
	resp, err := o.invoker.Reason(ctx, step.AgentID, req)
	if err != nil {
		return nil, err
	}
	return resp.ToMetadata(), nil
}

func (o *Orchestrator) executeRetrieval(step *core.WorkflowStep) (core.Metadata, error) {
	memoryType := defaultRetrievalType
	if t := step.Input.GetString("memoryType"); t != "" {
		memoryType = core.MemoryType(t)
	}
	limit := defaultRetrievalLimit
	if n, ok := step.Input.GetInt("limit"); ok {
		limit = n
	}
	entries, err := o.memory.RetrieveMemory(memoryType, step.Input.GetString("query"), limit)
	if err != nil {
		return nil, err
	}

	values := make([]core.Value, len(entries))
	for i, entry := range entries {
		values[i] = core.Map(core.Metadata{
			"id":         core.String(entry.ID),
			"content":    core.String(entry.Content),
			"importance": core.Number(entry.Importance),
		})
	}
	return core.Metadata{
		"entries": core.List(values...),
		"count":   core.Number(float64(len(entries))),
	}, nil
}

func (o *Orchestrator) executeStorage(step *core.WorkflowStep) (core.Metadata, error) {
	memoryType := defaultStorageType
	if t := step.Input.GetString("memoryType"); t != "" {
		memoryType = core.MemoryType(t)
	}
	importance := defaultStorageImportance
	if f, ok := step.Input.GetNumber("importance"); ok {
		importance = f
	}
	entry, err := o.memory.StoreMemory(memoryType, step.Input.GetString("content"), step.Input.GetMap("metadata"), importance)
	if err != nil {
		return nil, err
	}
	return core.Metadata{"memoryId": core.String(entry.ID)}, nil
}

func (o *Orchestrator) logStep(workflowID string, step *core.WorkflowStep, dur time.Duration, err error) {
	if fl, ok := o.logger.(*logging.ForgeLogger); ok {
		fl.LogStepExecution(workflowID, step.ID, string(step.Type), dur, err)
		return
	}
	if err != nil {
		o.logger.Error("step execution failed", "workflow_id", workflowID, "step_id", step.ID, "step_type", string(step.Type), "duration", dur, "error", err)
		return
	}
	o.logger.Debug("step executed", "workflow_id", workflowID, "step_id", step.ID, "step_type", string(step.Type), "duration", dur)
}
