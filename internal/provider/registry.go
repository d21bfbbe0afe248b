package provider

import (
	"fmt"
	"log/slog"

	"agentx/internal/capabilities"
	"agentx/internal/domain"
	"agentx/internal/domain/services"
)

// fallbackProvider serves models that appear in no catalog. OpenRouter
// proxies essentially everything, so unknown models go there.
const fallbackProvider = "openrouter"

// Registry holds the configured completion providers and resolves one for a
// requested model.
type Registry struct {
	providers map[string]services.Provider
	catalog   *capabilities.Registry
	logger    *slog.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(catalog *capabilities.Registry, logger *slog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]services.Provider),
		catalog:   catalog,
		logger:    logger,
	}
}

// Register adds a provider under its own name.
func (r *Registry) Register(p services.Provider) {
	r.providers[p.Name()] = p
	r.logger.Info("completion provider registered", "provider", p.Name())
}

// ForModel resolves the provider for a model: catalog lookup first, then
// each provider's own model matching, then the fallback.
func (r *Registry) ForModel(model string) (services.Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: model is required", domain.ErrValidation)
	}

	if name, ok := r.catalog.ProviderFor(model); ok {
		if p, registered := r.providers[name]; registered {
			return p, nil
		}
		return nil, fmt.Errorf("%w: provider %q for model %q is not configured", domain.ErrValidation, name, model)
	}

	for _, p := range r.providers {
		if p.Name() != fallbackProvider && p.SupportsModel(model) {
			return p, nil
		}
	}

	if p, ok := r.providers[fallbackProvider]; ok {
		return p, nil
	}

	return nil, fmt.Errorf("%w: no provider available for model %q", domain.ErrValidation, model)
}
