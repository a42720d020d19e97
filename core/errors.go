package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCollaborationDisabled is returned by the synergy coordinator when
// collaboration has been turned off in the forge configuration.
var ErrCollaborationDisabled = errors.New("collaboration is disabled")

// CapacityError signals the registry already holds the configured maximum
// number of agents. Capacity failures are surfaced directly, never retried.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("agent capacity exceeded: maximum of %d concurrent agents reached", e.Max)
}

// NotFoundError reports a missing entity of a given kind (agent, workflow,
// memory, step, model).
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// UnavailableError reports an agent that exists but is not in the idle state
// required to begin a reasoning call. It names the state it was found in.
type UnavailableError struct {
	AgentID string
	State   AgentState
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("agent %s is not available for reasoning: current state %s", e.AgentID, e.State)
}

// UnknownStepTypeError reports a workflow step whose kind has no executor.
// The surrounding workflow is aborted; there is no partial success.
type UnknownStepTypeError struct {
	StepID string
	Type   StepType
}

func (e *UnknownStepTypeError) Error() string {
	return fmt.Sprintf("step %s has unknown or unexecutable type %q", e.StepID, e.Type)
}

// DependencyCycleError reports a scheduler deadlock: pending steps remain but
// a full scan made no progress, meaning their dependency set is cyclic or
// references steps that can never complete.
type DependencyCycleError struct {
	WorkflowID string
	StepIDs    []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("workflow %s has unsatisfiable step dependencies: stuck steps [%s]",
		e.WorkflowID, strings.Join(e.StepIDs, ", "))
}

// TimeoutError reports that workflow execution exceeded the configured
// deadline. Outputs of steps completed before the deadline are retained.
type TimeoutError struct {
	WorkflowID string
	Limit      time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("workflow %s exceeded execution timeout of %s", e.WorkflowID, e.Limit)
}

// InferenceError wraps a failure of the model inference provider. JSON shape
// violations in provider output are not inference errors; only transport and
// provider-level failures are.
type InferenceError struct {
	AgentID string
	Err     error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed for agent %s: %v", e.AgentID, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// NetworkError wraps a transport failure reported by the model runtime
// manager during artifact download.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
