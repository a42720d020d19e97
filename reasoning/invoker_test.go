package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/memory"
	"github.com/cogfoundry/forge/model"
	"github.com/cogfoundry/forge/registry"
	"github.com/cogfoundry/forge/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	registry *registry.Registry
	memory   *memory.Store
	provider *model.MockProvider
	invoker  *Invoker
	agentID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rt := runtime.NewManager()
	rt.RegisterModel("tiny", core.Metadata{"model": core.String("gpt-4o-mini")})
	reg := registry.New(rt)
	mem := memory.NewStore()
	provider := model.NewMockProvider()
	inv := NewInvoker(reg, mem, provider)

	agent, err := reg.CreateAgent(context.Background(), "atlas", core.AgentTypeReasoning, "tiny", nil)
	require.NoError(t, err)

	return &fixture{registry: reg, memory: mem, provider: provider, invoker: inv, agentID: agent.ID}
}

func (f *fixture) agentState(t *testing.T) core.AgentState {
	t.Helper()
	agent, err := f.registry.GetAgent(f.agentID)
	require.NoError(t, err)
	return agent.State
}

func TestReason_StructuredResponse(t *testing.T) {
	f := newFixture(t)
	f.provider.AddResponse("capital of France",
		`{"conclusion": "Paris", "confidence": 0.95, "reasoningSteps": ["recall geography"], "supportingEvidence": ["atlas"], "alternatives": []}`)

	resp, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{
		Problem:  "What is the capital of France?",
		Strategy: "deductive",
	})
	require.NoError(t, err)

	assert.Equal(t, core.OutcomeStructured, resp.Outcome)
	assert.Equal(t, "Paris", resp.Conclusion)
	assert.InDelta(t, 0.95, resp.Confidence, 1e-9)
	assert.Equal(t, []string{"recall geography"}, resp.Steps)
	assert.Equal(t, []string{"atlas"}, resp.Evidence)
	assert.Empty(t, resp.Alternatives)
	assert.Equal(t, core.AgentStateIdle, f.agentState(t))
}

func TestReason_ClampsConfidenceAndDefaultsLists(t *testing.T) {
	f := newFixture(t)
	f.provider.AddResponse("Problem", `{"conclusion": "sure", "confidence": 7}`)

	resp, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{Problem: "Problem?"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, resp.Confidence)
	assert.NotNil(t, resp.Steps)
	assert.NotNil(t, resp.Evidence)
	assert.NotNil(t, resp.Alternatives)
	assert.Empty(t, resp.Steps)
}

func TestReason_StructuredResponseWithSurroundingProse(t *testing.T) {
	f := newFixture(t)
	f.provider.AddResponse("Problem",
		"Here is my answer:\n"+`{"conclusion": "42", "confidence": 0.8}`+"\nHope that helps!")

	resp, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{Problem: "Problem?"})
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeStructured, resp.Outcome)
	assert.Equal(t, "42", resp.Conclusion)
}

func TestReason_DegradesGracefullyOnMalformedOutput(t *testing.T) {
	f := newFixture(t)
	longText := strings.Repeat("x", 600)
	f.provider.AddResponse("Problem", longText)

	resp, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{Problem: "Problem?"})
	require.NoError(t, err)

	assert.Equal(t, core.OutcomeDegraded, resp.Outcome)
	assert.Len(t, resp.Conclusion, 500)
	assert.Equal(t, 0.5, resp.Confidence)
	assert.Empty(t, resp.Steps)
	assert.Equal(t, core.AgentStateIdle, f.agentState(t))
}

func TestReason_NotFoundAgent(t *testing.T) {
	f := newFixture(t)
	_, err := f.invoker.Reason(context.Background(), "agent-missing", core.ReasoningRequest{Problem: "x"})
	var notFound *core.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "agent", notFound.Kind)
}

func TestReason_UnavailableWhenNotIdle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.SetAgentState(f.agentID, core.AgentStateBusy))

	_, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{Problem: "x"})
	var unavailable *core.UnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, core.AgentStateBusy, unavailable.State)

	// The failed call must not disturb the externally applied state.
	assert.Equal(t, core.AgentStateBusy, f.agentState(t))
}

func TestReason_ProviderFailurePropagatesAndResetsState(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("connection refused")
	f.provider.FailWith(cause)

	_, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{Problem: "x"})
	var infErr *core.InferenceError
	require.True(t, errors.As(err, &infErr))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, core.AgentStateIdle, f.agentState(t))
}

func TestReason_RecordsEpisodicMemory(t *testing.T) {
	f := newFixture(t)
	f.provider.AddResponse("capital of France", `{"conclusion": "Paris", "confidence": 0.9}`)

	_, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{
		Problem:  "What is the capital of France?",
		Strategy: "deductive",
	})
	require.NoError(t, err)

	episodes, err := f.memory.RetrieveMemory(core.MemoryEpisodic, "", 10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)

	episode := episodes[0]
	assert.Contains(t, episode.Content, "What is the capital of France?")
	assert.Contains(t, episode.Content, "Paris")
	assert.InDelta(t, 0.9, episode.Importance, 1e-9)
	assert.Equal(t, f.agentID, episode.Metadata.GetString("agentId"))
	assert.Equal(t, "deductive", episode.Metadata.GetString("strategy"))
}

func TestReason_EmbedsSemanticMemoriesInPrompt(t *testing.T) {
	f := newFixture(t)
	_, err := f.memory.StoreMemory(core.MemorySemantic, "Paris is the capital of France", nil, 0.9)
	require.NoError(t, err)

	// The canned match keys on memory content, proving the retrieved
	// fragment was embedded into the prompt.
	f.provider.AddResponse("Paris is the capital of France", `{"conclusion": "Paris", "confidence": 0.9}`)

	resp, err := f.invoker.Reason(context.Background(), f.agentID, core.ReasoningRequest{Problem: "capital of France"})
	require.NoError(t, err)
	assert.Equal(t, "Paris", resp.Conclusion)

	// Retrieval inside the reasoning call counts as an access.
	entries, err := f.memory.RetrieveMemory(core.MemorySemantic, "", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, entries[0].AccessCount)
}

func TestReason_HonorsContextCancellation(t *testing.T) {
	f := newFixture(t)
	f.provider.SetDelay(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := f.invoker.Reason(ctx, f.agentID, core.ReasoningRequest{Problem: "slow"})
	var infErr *core.InferenceError
	require.True(t, errors.As(err, &infErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, core.AgentStateIdle, f.agentState(t))
}
