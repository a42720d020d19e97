package core

import (
	"sync"
	"time"
)

// WorkflowState is the lifecycle state of a workflow.
type WorkflowState string

// Workflow lifecycle states.
const (
	WorkflowPending   WorkflowState = "pending"
	WorkflowActive    WorkflowState = "active"
	WorkflowCompleted WorkflowState = "completed"
	WorkflowFailed    WorkflowState = "failed"
	WorkflowPaused    WorkflowState = "paused"
)

// StepState is the lifecycle state of a single workflow step.
type StepState string

// Step lifecycle states.
const (
	StepPending   StepState = "pending"
	StepActive    StepState = "active"
	StepCompleted StepState = "completed"
	StepFailed    StepState = "failed"
)

// StepType classifies what a workflow step does when dispatched.
type StepType string

// Recognized step types. Only reasoning, memory-retrieval and memory-storage
// have executors; the remaining kinds are declared for forward compatibility
// and fail with UnknownStepTypeError when dispatched.
const (
	StepReasoning       StepType = "reasoning"
	StepMemoryRetrieval StepType = "memory-retrieval"
	StepMemoryStorage   StepType = "memory-storage"
	StepCollaboration   StepType = "collaboration"
	StepDecision        StepType = "decision"
	StepAction          StepType = "action"
)

// WorkflowStep is one unit of work inside a workflow. AgentID is a
// back-reference into the registry; the step never owns the agent.
// DependsOn holds the ids of steps that must complete before this one
// becomes eligible. ExecutedAt is recorded the moment execution begins.
type WorkflowStep struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       StepType  `json:"type"`
	AgentID    string    `json:"agent_id,omitempty"`
	Input      Metadata  `json:"input,omitempty"`
	Output     Metadata  `json:"output,omitempty"`
	State      StepState `json:"state"`
	DependsOn  []string  `json:"depends_on,omitempty"`
	ExecutedAt time.Time `json:"executed_at,omitzero"`
}

// Clone returns a deep copy of the step.
func (s *WorkflowStep) Clone() *WorkflowStep {
	clone := *s
	clone.Input = s.Input.Clone()
	clone.Output = s.Output.Clone()
	clone.DependsOn = append([]string(nil), s.DependsOn...)
	return &clone
}

// Workflow is a named set of steps with inter-step dependencies, executed to
// completion or failure as a unit. A workflow owns its steps exclusively.
// Mutations go through the exported methods, which serialize access; readers
// outside the orchestrator receive clones.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	State       WorkflowState   `json:"state"`
	Steps       []*WorkflowStep `json:"steps"`
	Input       Metadata        `json:"input,omitempty"`
	Output      Metadata        `json:"output,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`

	mu sync.RWMutex
}

// NewWorkflow constructs a pending workflow owning the given steps.
func NewWorkflow(name, description string, steps []*WorkflowStep, input Metadata) *Workflow {
	now := time.Now().UTC()
	return &Workflow{
		ID:          NewID("workflow"),
		Name:        name,
		Description: description,
		State:       WorkflowPending,
		Steps:       steps,
		Input:       input.Clone(),
		Output:      Metadata{},
		Created:     now,
		Updated:     now,
	}
}

// Clone returns a deep copy safe for external inspection.
func (w *Workflow) Clone() *Workflow {
	w.mu.RLock()
	defer w.mu.RUnlock()
	clone := &Workflow{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		State:       w.State,
		Input:       w.Input.Clone(),
		Output:      w.Output.Clone(),
		Created:     w.Created,
		Updated:     w.Updated,
	}
	clone.Steps = make([]*WorkflowStep, len(w.Steps))
	for i, s := range w.Steps {
		clone.Steps[i] = s.Clone()
	}
	return clone
}

// SetState transitions the workflow lifecycle state.
func (w *Workflow) SetState(state WorkflowState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.State = state
	w.Updated = time.Now().UTC()
}

// CompareAndSetState transitions from an expected state, reporting whether
// the transition happened. Used to guard against double execution.
func (w *Workflow) CompareAndSetState(from, to WorkflowState) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.State != from {
		return false
	}
	w.State = to
	w.Updated = time.Now().UTC()
	return true
}

// EligibleSteps returns the ids of pending steps whose declared dependencies
// have all completed, along with the ids of all still-pending steps. An empty
// eligible set with a non-empty pending set indicates a scheduler deadlock.
func (w *Workflow) EligibleSteps() (eligible, pending []string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	completed := make(map[string]bool, len(w.Steps))
	for _, s := range w.Steps {
		if s.State == StepCompleted {
			completed[s.ID] = true
		}
	}
	for _, s := range w.Steps {
		if s.State != StepPending {
			continue
		}
		pending = append(pending, s.ID)
		ready := true
		for _, dep := range s.DependsOn {
			if !completed[dep] {
				ready = false
				break
			}
		}
		if ready {
			eligible = append(eligible, s.ID)
		}
	}
	return eligible, pending
}

// BeginStep marks the step active, stamps ExecutedAt, and returns a clone of
// it for dispatch. Returns nil when the id is unknown.
func (w *Workflow) BeginStep(id string) *WorkflowStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stepLocked(id)
	if s == nil {
		return nil
	}
	s.State = StepActive
	s.ExecutedAt = time.Now().UTC()
	w.Updated = s.ExecutedAt
	return s.Clone()
}

// CompleteStep records a step's output and marks it completed. The output is
// also merged into the workflow output under the step name, so completed
// results stay visible even when a later step fails.
func (w *Workflow) CompleteStep(id string, output Metadata) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stepLocked(id)
	if s == nil {
		return
	}
	s.State = StepCompleted
	s.Output = output.Clone()
	if w.Output == nil {
		w.Output = Metadata{}
	}
	w.Output[s.Name] = Map(output.Clone())
	w.Updated = time.Now().UTC()
}

// FailStep marks the given steps failed.
func (w *Workflow) FailStep(ids ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range ids {
		if s := w.stepLocked(id); s != nil {
			s.State = StepFailed
		}
	}
	w.Updated = time.Now().UTC()
}

// FailActiveSteps marks every active step failed. Used when a timeout cuts
// execution off with a step still in flight.
func (w *Workflow) FailActiveSteps() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.Steps {
		if s.State == StepActive {
			s.State = StepFailed
		}
	}
	w.Updated = time.Now().UTC()
}

func (w *Workflow) stepLocked(id string) *WorkflowStep {
	for _, s := range w.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}
