package capabilities

// Model describes one catalog entry.
type Model struct {
	ID          string `yaml:"-" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	// Free marks models usable without billing (OpenRouter's :free variants).
	Free bool `yaml:"free,omitempty" json:"free,omitempty"`
}

// ProviderCatalog is the per-provider model catalog loaded from YAML.
type ProviderCatalog struct {
	Provider string           `yaml:"provider" json:"provider"`
	Models   map[string]Model `yaml:"models" json:"models"`
}
