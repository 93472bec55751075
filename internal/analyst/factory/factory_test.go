package factory

import (
	"errors"
	"testing"

	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
)

func TestNew_Ollama(t *testing.T) {
	p, err := New(config.AnalystConfig{Provider: "ollama"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("expected ollama, got %s", p.Name())
	}
}

func TestNew_Claude(t *testing.T) {
	p, err := New(config.AnalystConfig{
		Provider: "claude",
		Claude:   config.ClaudeConfig{APIKey: "key"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "claude" {
		t.Errorf("expected claude, got %s", p.Name())
	}
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New(config.AnalystConfig{Provider: "openai"})
	if !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(config.AnalystConfig{Provider: "bard"})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}
