// Package ollama provides commentary completions via a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jadaunkg/horizon/internal/analyst"
	"github.com/jadaunkg/horizon/internal/core"
)

// Provider completes requests against the Ollama chat API
type Provider struct {
	endpoint string
	model    string
	client   *http.Client
}

// New creates an Ollama provider. Endpoint defaults to the local daemon.
func New(endpoint, model string) (*Provider, error) {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	if model == "" {
		model = "qwen2.5:32b"
	}
	return &Provider{
		endpoint: endpoint,
		model:    model,
		client: &http.Client{
			Timeout: 5 * time.Minute, // local inference can be slow
		},
	}, nil
}

func (p *Provider) Name() string {
	return "ollama"
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type chatResponse struct {
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// Complete sends a single-turn completion request
func (p *Provider) Complete(ctx context.Context, req analyst.Request) (*analyst.Response, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body, err := json.Marshal(chatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Options: chatOptions{
			NumPredict:  maxTokens,
			Temperature: req.Temperature,
		},
	})
	if err != nil {
		return nil, core.WrapError(core.ErrAnalystFailed,
			fmt.Errorf("marshaling request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, core.WrapError(core.ErrAnalystFailed,
			fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, core.WrapError(core.ErrAnalystFailed,
			fmt.Errorf("ollama: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrAnalystFailed,
			fmt.Errorf("ollama returned status %d", resp.StatusCode))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, core.WrapError(core.ErrAnalystFailed,
			fmt.Errorf("decoding response: %w", err))
	}

	return &analyst.Response{
		Content:      out.Message.Content,
		InputTokens:  out.PromptEvalCount,
		OutputTokens: out.EvalCount,
	}, nil
}
