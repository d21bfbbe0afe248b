package lorem

import (
	"context"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"agentx/internal/domain/services"
)

// wordDelay is the pause between emitted words, roughly imitating token
// latency of a real provider.
const wordDelay = 20 * time.Millisecond

// Provider is a fake completion provider that streams lorem ipsum text.
// Used for development and tests without real API keys.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{generator: loremgen.New()}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-test"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// StreamCompletion streams a few sentences word by word.
func (p *Provider) StreamCompletion(ctx context.Context, req *services.CompletionRequest) (<-chan services.StreamEvent, error) {
	text := p.generator.Paragraph(2, 4)
	words := strings.Fields(text)

	eventChan := make(chan services.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		for i, word := range words {
			delta := word
			if i < len(words)-1 {
				delta += " "
			}

			select {
			case <-ctx.Done():
				eventChan <- services.StreamEvent{Err: ctx.Err()}
				return
			case eventChan <- services.StreamEvent{Delta: delta}:
			}

			select {
			case <-ctx.Done():
				eventChan <- services.StreamEvent{Err: ctx.Err()}
				return
			case <-time.After(wordDelay):
			}
		}
	}()

	return eventChan, nil
}
