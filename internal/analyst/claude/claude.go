// Package claude provides commentary completions via the Anthropic API.
package claude

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jadaunkg/horizon/internal/analyst"
	"github.com/jadaunkg/horizon/internal/core"
)

// Provider completes requests against the Anthropic messages API
type Provider struct {
	client anthropic.Client
	model  string
}

// New creates a Claude provider
func New(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("claude provider needs an API key"))
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Provider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (p *Provider) Name() string {
	return "claude"
}

// Complete sends a single-turn completion request
func (p *Provider) Complete(ctx context.Context, req analyst.Request) (*analyst.Response, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, core.WrapError(core.ErrAnalystFailed,
			fmt.Errorf("claude: %w", err))
	}

	content := ""
	if len(resp.Content) > 0 && resp.Content[0].Type == "text" {
		content = resp.Content[0].Text
	}

	return &analyst.Response{
		Content:      content,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}, nil
}
