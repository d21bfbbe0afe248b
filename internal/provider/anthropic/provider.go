package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/services"
)

const defaultMaxTokens = 4096

// Provider implements the completion provider interface for Anthropic
// (Claude) models using the native messages API.
type Provider struct {
	client *anthropic.Client
}

// NewProvider creates a new Anthropic provider with the given API key.
func NewProvider(apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{client: &client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// SupportsModel returns true if this provider supports the given model.
// Anthropic models start with "claude-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-")
}

// StreamCompletion opens a streaming messages call and forwards text deltas.
func (p *Provider) StreamCompletion(ctx context.Context, req *services.CompletionRequest) (<-chan services.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by Anthropic provider", req.Model)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: defaultMaxTokens,
	}

	// The messages API takes the system prompt separately from the turn list.
	for _, msg := range req.Messages {
		switch msg.Role {
		case models.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{
				Type: "text",
				Text: msg.Content,
			})
		case models.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	eventChan := make(chan services.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		stream := p.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()

			delta, ok := textDelta(event)
			if !ok {
				continue
			}

			select {
			case <-ctx.Done():
				eventChan <- services.StreamEvent{Err: ctx.Err()}
				return
			case eventChan <- services.StreamEvent{Delta: delta}:
			}
		}

		if err := stream.Err(); err != nil {
			select {
			case eventChan <- services.StreamEvent{Err: classifyError(err)}:
			case <-ctx.Done():
			}
		}
	}()

	return eventChan, nil
}

// textDelta extracts the text fragment from a content_block_delta event.
// All other event types (message levels, thinking, tool blocks) carry no
// relayable text.
func textDelta(event anthropic.MessageStreamEventUnion) (string, bool) {
	switch e := event.AsAny().(type) {
	case anthropic.ContentBlockDeltaEvent:
		if e.Delta.Text != "" {
			return e.Delta.Text, true
		}
	}
	return "", false
}

// classifyError extracts the upstream status from Anthropic API errors.
func classifyError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return domain.NewUpstreamError(apiErr.StatusCode, apiErr.Error())
	}
	return err
}
