package capabilities

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

var providerFiles = []string{"openrouter", "anthropic", "lorem"}

// Registry maps model identifiers to the provider that serves them.
type Registry struct {
	catalogs map[string]*ProviderCatalog
	mu       sync.RWMutex
}

// NewRegistry creates a registry from the embedded YAML catalogs.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		catalogs: make(map[string]*ProviderCatalog),
	}

	for _, provider := range providerFiles {
		if err := r.loadProviderFile(provider); err != nil {
			return nil, fmt.Errorf("failed to load %s catalog: %w", provider, err)
		}
	}

	return r, nil
}

// loadProviderFile loads a provider's catalog YAML file
func (r *Registry) loadProviderFile(provider string) error {
	filename := fmt.Sprintf("config/%s.yaml", provider)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var catalog ProviderCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	// Model IDs are map keys in the YAML; fill them into the structs
	for id, model := range catalog.Models {
		model.ID = id
		catalog.Models[id] = model
	}

	r.mu.Lock()
	r.catalogs[catalog.Provider] = &catalog
	r.mu.Unlock()

	return nil
}

// ProviderFor returns the provider name serving the given model, false when
// the model is not in any catalog.
func (r *Registry) ProviderFor(model string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, catalog := range r.catalogs {
		if _, ok := catalog.Models[model]; ok {
			return name, true
		}
	}
	return "", false
}

// Catalogs returns all provider catalogs, for the models listing endpoint.
func (r *Registry) Catalogs() []*ProviderCatalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalogs := make([]*ProviderCatalog, 0, len(r.catalogs))
	for _, catalog := range r.catalogs {
		catalogs = append(catalogs, catalog)
	}
	return catalogs
}
