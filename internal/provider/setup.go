package provider

import (
	"fmt"
	"log/slog"

	"agentx/internal/capabilities"
	"agentx/internal/config"
	"agentx/internal/provider/anthropic"
	"agentx/internal/provider/lorem"
	"agentx/internal/provider/openrouter"
)

// Setup builds the provider registry from configuration. Providers whose API
// keys are absent are skipped; the lorem fake is registered outside prod so
// the relay works without any keys during development.
func Setup(cfg *config.Config, catalog *capabilities.Registry, logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry(catalog, logger)

	if cfg.OpenRouterAPIKey != "" {
		p, err := openrouter.NewProvider(cfg.OpenRouterAPIKey)
		if err != nil {
			return nil, fmt.Errorf("setup openrouter provider: %w", err)
		}
		registry.Register(p)
	}

	if cfg.AnthropicAPIKey != "" {
		p, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("setup anthropic provider: %w", err)
		}
		registry.Register(p)
	}

	if cfg.Environment != "prod" {
		registry.Register(lorem.NewProvider())
	}

	if len(registry.providers) == 0 {
		return nil, fmt.Errorf("no completion providers configured, set OPENROUTER_API_KEY or ANTHROPIC_API_KEY")
	}

	return registry, nil
}
