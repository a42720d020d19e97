// Package openai provides an inference provider backed by the OpenAI Chat
// Completions API. It adapts the forge's single-prompt completion contract
// into the SDK's message format.
package openai

import (
	"context"
	"fmt"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/model"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI provider adapter. Model is the fallback chat
// model used when a handle carries no "model" metadata.
type Options struct {
	Model string
}

// Provider wraps the OpenAI Chat Completions API behind the generic
// model.Provider interface.
type Provider struct {
	client *openai.Client
	opts   Options
}

// NewProvider creates a new OpenAI provider using the official client.
func NewProvider(optFns ...func(o *Options)) *Provider {
	client := openai.NewClient()
	return NewProviderFromClient(&client, optFns...)
}

// NewProviderFromClient creates a new OpenAI provider from an existing client.
func NewProviderFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model: openai.ChatModelGPT4oMini,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// Complete implements model.Provider via a non-streaming chat completion.
func (p *Provider) Complete(ctx context.Context, prompt string, handle core.ModelHandle, opts model.CompleteOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       p.modelFor(handle),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(opts.MaxTokens)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// modelFor resolves the chat model from the handle metadata, falling back to
// the configured default.
func (p *Provider) modelFor(handle core.ModelHandle) string {
	if name := handle.Metadata.GetString("model"); name != "" {
		return name
	}
	return p.opts.Model
}

// Info returns metadata describing this provider implementation.
func (p *Provider) Info() model.Info {
	return model.Info{Provider: "openai"}
}
