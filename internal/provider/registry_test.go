package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"agentx/internal/capabilities"
	"agentx/internal/domain"
	"agentx/internal/domain/services"
)

type staticProvider struct {
	name   string
	prefix string
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) SupportsModel(model string) bool {
	return p.prefix != "" && strings.HasPrefix(model, p.prefix)
}

func (p *staticProvider) StreamCompletion(ctx context.Context, req *services.CompletionRequest) (<-chan services.StreamEvent, error) {
	ch := make(chan services.StreamEvent)
	close(ch)
	return ch, nil
}

func newTestRegistry(t *testing.T, providers ...services.Provider) *Registry {
	t.Helper()
	catalog, err := capabilities.NewRegistry()
	if err != nil {
		t.Fatalf("capabilities.NewRegistry failed: %v", err)
	}
	r := NewRegistry(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func TestForModel_CatalogLookup(t *testing.T) {
	anthropicP := &staticProvider{name: "anthropic", prefix: "claude-"}
	openrouterP := &staticProvider{name: "openrouter"}
	r := newTestRegistry(t, anthropicP, openrouterP)

	p, err := r.ForModel("claude-haiku-4-5-20251001")
	if err != nil {
		t.Fatalf("ForModel failed: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected anthropic, got %s", p.Name())
	}
}

func TestForModel_PrefixMatchOutsideCatalog(t *testing.T) {
	anthropicP := &staticProvider{name: "anthropic", prefix: "claude-"}
	openrouterP := &staticProvider{name: "openrouter"}
	r := newTestRegistry(t, anthropicP, openrouterP)

	p, err := r.ForModel("claude-brand-new-model")
	if err != nil {
		t.Fatalf("ForModel failed: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected anthropic for claude- prefix, got %s", p.Name())
	}
}

func TestForModel_UnknownModelFallsBack(t *testing.T) {
	anthropicP := &staticProvider{name: "anthropic", prefix: "claude-"}
	openrouterP := &staticProvider{name: "openrouter"}
	r := newTestRegistry(t, anthropicP, openrouterP)

	p, err := r.ForModel("mistralai/mistral-7b-instruct")
	if err != nil {
		t.Fatalf("ForModel failed: %v", err)
	}
	if p.Name() != "openrouter" {
		t.Errorf("expected openrouter fallback, got %s", p.Name())
	}
}

func TestForModel_CataloguedButUnconfigured(t *testing.T) {
	// lorem is in the catalog but only openrouter is registered here.
	r := newTestRegistry(t, &staticProvider{name: "openrouter"})

	_, err := r.ForModel("lorem-fast")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestForModel_EmptyModel(t *testing.T) {
	r := newTestRegistry(t, &staticProvider{name: "openrouter"})

	_, err := r.ForModel("")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestForModel_NoProviders(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.ForModel("some/model")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error when nothing is registered, got %v", err)
	}
}
