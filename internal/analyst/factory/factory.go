// Package factory constructs the configured analyst provider.
package factory

import (
	"fmt"

	"github.com/jadaunkg/horizon/internal/analyst"
	"github.com/jadaunkg/horizon/internal/analyst/claude"
	"github.com/jadaunkg/horizon/internal/analyst/ollama"
	"github.com/jadaunkg/horizon/internal/analyst/openai"
	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
)

// New creates the provider named by the configuration
func New(cfg config.AnalystConfig) (analyst.Provider, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown analyst provider: %s", cfg.Provider))
	}
}
