// Package anthropic provides an inference provider backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/model"
)

// Options configure the Anthropic provider adapter (fallback model id, API
// key). Extend via functional options to preserve stability.
type Options struct {
	Model  anthropic.Model
	APIKey string
}

// Provider wraps the Anthropic Messages API behind the generic
// model.Provider interface.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

// NewProvider creates a new Anthropic provider using the official client.
func NewProvider(optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model: anthropic.ModelClaude3_5Sonnet20241022,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Provider{client: &client, opts: opts}
}

// NewProviderFromClient creates a new Anthropic provider from an existing client.
func NewProviderFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model: anthropic.ModelClaude3_5Sonnet20241022,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// Complete implements model.Provider via a non-streaming message call.
func (p *Provider) Complete(ctx context.Context, prompt string, handle core.ModelHandle, opts model.CompleteOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model: p.modelFor(handle),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(opts.Temperature),
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String(), nil
}

// modelFor resolves the model id from the handle metadata, falling back to
// the configured default.
func (p *Provider) modelFor(handle core.ModelHandle) anthropic.Model {
	if name := handle.Metadata.GetString("model"); name != "" {
		return anthropic.Model(name)
	}
	return p.opts.Model
}

// Info returns metadata describing this provider implementation.
func (p *Provider) Info() model.Info {
	return model.Info{Provider: "anthropic"}
}
