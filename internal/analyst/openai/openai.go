// Package openai provides commentary completions via the OpenAI API.
package openai

import (
	"context"
	"fmt"

	"github.com/jadaunkg/horizon/internal/analyst"
	"github.com/jadaunkg/horizon/internal/core"
	"github.com/sashabaranov/go-openai"
)

// Provider completes requests against the OpenAI chat API
type Provider struct {
	client *openai.Client
	model  string
}

// New creates an OpenAI provider
func New(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("openai provider needs an API key"))
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &Provider{client: openai.NewClient(apiKey), model: model}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

// Complete sends a single-turn completion request
func (p *Provider) Complete(ctx context.Context, req analyst.Request) (*analyst.Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrAnalystFailed,
			fmt.Errorf("openai: %w", err))
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &analyst.Response{
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
