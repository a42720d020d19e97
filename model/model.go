package model

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cogfoundry/forge/core"
)

// CompleteOptions tunes a single completion call.
type CompleteOptions struct {
	Temperature float64
	MaxTokens   int64
}

// Info contains metadata about a provider implementation.
type Info struct {
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Provider is the inference collaborator contract: one prompt in, generated
// text out, over a chat-completion-compatible call bound to the model
// identified by the handle. Network and provider-level failures are returned
// as errors; the caller wraps them as InferenceError.
type Provider interface {
	Complete(ctx context.Context, prompt string, handle core.ModelHandle, opts CompleteOptions) (string, error)

	// Info returns information about the provider implementation.
	Info() Info
}

type cannedResponse struct {
	match string
	text  string
}

// MockProvider is a lightweight in-memory Provider useful for tests and
// examples. Responses are matched by substring against the prompt, falling
// back to a generic completion. An injected error or artificial delay can
// simulate provider failures and slow calls.
type MockProvider struct {
	mu        sync.Mutex
	responses []cannedResponse
	err       error
	delay     time.Duration
	calls     int
}

// NewMockProvider constructs an empty MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// AddResponse registers a canned completion returned whenever the prompt
// contains match. Registrations are checked in insertion order.
func (m *MockProvider) AddResponse(match, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, cannedResponse{match: match, text: text})
}

// FailWith makes every subsequent Complete call return err.
func (m *MockProvider) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes every Complete call block for d (or until the context is
// done) before responding.
func (m *MockProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns the number of Complete invocations so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Provider.
func (m *MockProvider) Complete(ctx context.Context, prompt string, _ core.ModelHandle, _ CompleteOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	delay := m.delay
	responses := append([]cannedResponse(nil), m.responses...)
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if err != nil {
		return "", err
	}
	for _, r := range responses {
		if strings.Contains(prompt, r.match) {
			return r.text, nil
		}
	}
	return "Mock completion", nil
}

// Info implements Provider.
func (m *MockProvider) Info() Info { return Info{Provider: "mock"} }
