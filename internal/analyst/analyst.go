// Package analyst produces short written commentary on a forecast run by
// handing a numeric digest of the result to a language model provider.
package analyst

import (
	"context"

	"github.com/jadaunkg/horizon/internal/pipeline"
)

// Provider is a one-shot completion backend
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a single completion request
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the provider's completion plus token accounting
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

const systemPrompt = `You are a quantitative analyst. You are given the ` +
	`numeric output of a statistical price forecast for one instrument. ` +
	`Write a short, factual commentary (at most three paragraphs) on the ` +
	`forecast trajectory, its uncertainty band, and the model's measured ` +
	`accuracy. Do not give investment advice. Do not invent numbers that ` +
	`are not in the input.`

// Analyst turns run results into commentary
type Analyst struct {
	provider Provider
}

// New creates an analyst over the given provider
func New(p Provider) *Analyst {
	return &Analyst{provider: p}
}

// Commentary generates written commentary for one run
func (a *Analyst) Commentary(ctx context.Context, res *pipeline.Result, name string) (string, error) {
	resp, err := a.provider.Complete(ctx, Request{
		System:      systemPrompt,
		Prompt:      Digest(res, name),
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
