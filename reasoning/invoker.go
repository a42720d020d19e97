// Package reasoning performs single reasoning calls: it claims an idle
// agent, augments the problem with semantic memories, delegates to the
// inference provider, parses the structured response (degrading gracefully on
// malformed output) and records an episodic memory of the outcome.
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/logging"
	"github.com/cogfoundry/forge/memory"
	"github.com/cogfoundry/forge/model"
	"github.com/cogfoundry/forge/registry"
)

const (
	// memoryContextLimit caps how many semantic memories are embedded into
	// the prompt.
	memoryContextLimit = 5
	// degradedConclusionLimit truncates raw output used as a fallback
	// conclusion.
	degradedConclusionLimit = 500
	// degradedConfidence is the fixed confidence of a degraded response.
	degradedConfidence = 0.5
)

// Options configure the invoker.
type Options struct {
	Temperature float64
	MaxTokens   int64
	Logger      logging.Logger
}

// Invoker executes reasoning calls for registered agents.
type Invoker struct {
	registry *registry.Registry
	memory   *memory.Store
	provider model.Provider

	temperature float64
	maxTokens   int64
	logger      logging.Logger
}

// NewInvoker constructs an invoker over the given registry, memory store and
// inference provider.
func NewInvoker(reg *registry.Registry, mem *memory.Store, provider model.Provider, optFns ...func(o *Options)) *Invoker {
	opts := Options{Temperature: 0.7, MaxTokens: 2048, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{
		registry:    reg,
		memory:      mem,
		provider:    provider,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		logger:      opts.Logger,
	}
}

// Reason performs one reasoning call for the agent. The agent must exist and
// be idle; it is held in the active state for the duration of the call and
// restored to idle on every exit path. Provider failures propagate as
// InferenceError; malformed model output degrades to a low-confidence textual
// result instead of failing.
func (inv *Invoker) Reason(ctx context.Context, agentID string, req core.ReasoningRequest) (*core.ReasoningResponse, error) {
	agent, err := inv.registry.BeginReasoning(agentID)
	if err != nil {
		return nil, err
	}
	defer inv.registry.EndReasoning(agentID)

	memories, err := inv.memory.RetrieveMemory(core.MemorySemantic, req.Problem, memoryContextLimit)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(req, memories)

	start := time.Now()
	raw, err := inv.provider.Complete(ctx, prompt, agent.Model, model.CompleteOptions{
		Temperature: inv.temperature,
		MaxTokens:   inv.maxTokens,
	})
	if err != nil {
		inv.logger.Error("inference call failed", "agent_id", agentID, "duration", time.Since(start), "error", err)
		return nil, &core.InferenceError{AgentID: agentID, Err: err}
	}
	inv.logger.Debug("inference call completed", "agent_id", agentID, "duration", time.Since(start))

	resp := parseResponse(raw)
	inv.recordEpisode(agentID, req, resp)
	return resp, nil
}

// recordEpisode stores an episodic memory summarizing problem -> conclusion,
// with the resulting confidence as importance.
func (inv *Invoker) recordEpisode(agentID string, req core.ReasoningRequest, resp *core.ReasoningResponse) {
	content := fmt.Sprintf("Problem: %s -> Conclusion: %s", req.Problem, resp.Conclusion)
	metadata := core.Metadata{
		"agentId":  core.String(agentID),
		"strategy": core.String(req.Strategy),
		"outcome":  core.String(string(resp.Outcome)),
	}
	if _, err := inv.memory.StoreMemory(core.MemoryEpisodic, content, metadata, resp.Confidence); err != nil {
		inv.logger.Warn("failed to record episodic memory", "agent_id", agentID, "error", err)
	}
}

// buildPrompt assembles the structured reasoning prompt, embedding the
// problem, caller context, evidence, strategy and retrieved memory block, and
// instructing the provider to answer in a fixed JSON shape.
func buildPrompt(req core.ReasoningRequest, memories []*core.MemoryEntry) string {
	var sb strings.Builder
	sb.WriteString("You are a reasoning engine. Solve the following problem.\n\n")
	sb.WriteString("Problem: ")
	sb.WriteString(req.Problem)
	sb.WriteString("\n")
	if req.Context != "" {
		sb.WriteString("Context: ")
		sb.WriteString(req.Context)
		sb.WriteString("\n")
	}
	if len(req.Evidence) > 0 {
		sb.WriteString("Evidence:\n")
		for _, e := range req.Evidence {
			sb.WriteString("- ")
			sb.WriteString(e)
			sb.WriteString("\n")
		}
	}
	if req.Strategy != "" {
		sb.WriteString("Reasoning strategy: ")
		sb.WriteString(req.Strategy)
		sb.WriteString("\n")
	}
	if len(memories) > 0 {
		sb.WriteString("\nRelevant knowledge from memory:\n")
		for _, m := range memories {
			sb.WriteString("- ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nRespond with a single JSON object of the shape ")
	sb.WriteString(`{"conclusion": string, "confidence": number between 0 and 1, `)
	sb.WriteString(`"reasoningSteps": [string], "supportingEvidence": [string], "alternatives": [string]}`)
	sb.WriteString(" and nothing else.")
	return sb.String()
}

// structuredPayload mirrors the JSON shape requested from the provider.
type structuredPayload struct {
	Conclusion         string   `json:"conclusion"`
	Confidence         float64  `json:"confidence"`
	ReasoningSteps     []string `json:"reasoningSteps"`
	SupportingEvidence []string `json:"supportingEvidence"`
	Alternatives       []string `json:"alternatives"`
}

// parseResponse interprets raw model output. Well-formed JSON (possibly
// surrounded by prose) yields a structured response with clamped confidence
// and non-nil lists. Anything else degrades to a raw-text conclusion at fixed
// confidence; degradation is not an error.
func parseResponse(raw string) *core.ReasoningResponse {
	if payload, ok := decodePayload(raw); ok {
		return &core.ReasoningResponse{
			Outcome:      core.OutcomeStructured,
			Conclusion:   payload.Conclusion,
			Confidence:   core.ClampScore(payload.Confidence),
			Steps:        emptyIfNil(payload.ReasoningSteps),
			Evidence:     emptyIfNil(payload.SupportingEvidence),
			Alternatives: emptyIfNil(payload.Alternatives),
		}
	}

	conclusion := strings.TrimSpace(raw)
	if len(conclusion) > degradedConclusionLimit {
		conclusion = conclusion[:degradedConclusionLimit]
	}
	return &core.ReasoningResponse{
		Outcome:      core.OutcomeDegraded,
		Conclusion:   conclusion,
		Confidence:   degradedConfidence,
		Steps:        []string{},
		Evidence:     []string{},
		Alternatives: []string{},
	}
}

// decodePayload tries the raw text as JSON first, then the outermost brace
// delimited object, tolerating prose around the payload.
func decodePayload(raw string) (structuredPayload, bool) {
	var payload structuredPayload
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil && payload.Conclusion != "" {
		return payload, true
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err == nil && payload.Conclusion != "" {
			return payload, true
		}
	}
	return structuredPayload{}, false
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
