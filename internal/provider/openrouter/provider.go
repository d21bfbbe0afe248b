package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/services"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter asks clients to identify themselves through these headers.
const (
	refererHeader = "http://localhost:5173"
	titleHeader   = "AgentX"
)

// Provider implements the completion provider interface against OpenRouter's
// OpenAI-compatible chat completions API.
type Provider struct {
	client *openai.Client
}

// NewProvider creates a new OpenRouter provider with the given API key.
func NewProvider(apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = defaultBaseURL
	cfg.HTTPClient = &http.Client{
		Transport: &attributionTransport{base: http.DefaultTransport},
	}

	return &Provider{client: openai.NewClientWithConfig(cfg)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openrouter"
}

// SupportsModel returns true for any model: OpenRouter proxies every catalog
// entry, so it is the fallback provider.
func (p *Provider) SupportsModel(model string) bool {
	return model != ""
}

// StreamCompletion opens a streaming chat completion. Open failures are
// returned synchronously with the upstream status attached so the relay can
// classify them; later failures arrive as events.
func (p *Provider) StreamCompletion(ctx context.Context, req *services.CompletionRequest) (<-chan services.StreamEvent, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
		Stream:   true,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	eventChan := make(chan services.StreamEvent, 10) // buffered to keep the reader ahead

	go func() {
		defer close(eventChan)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case eventChan <- services.StreamEvent{Err: classifyError(err)}:
				case <-ctx.Done():
				}
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}

			select {
			case <-ctx.Done():
				eventChan <- services.StreamEvent{Err: ctx.Err()}
				return
			case eventChan <- services.StreamEvent{Delta: delta}:
			}
		}
	}()

	return eventChan, nil
}

func convertMessages(messages []models.Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		converted[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return converted
}

// classifyError extracts the upstream status from API errors so payment and
// rate-limit rejections keep their meaning through the relay.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewUpstreamError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewUpstreamError(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return err
}

// attributionTransport adds OpenRouter's attribution headers to every request.
type attributionTransport struct {
	base http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", refererHeader)
	req.Header.Set("X-Title", titleHeader)
	return t.base.RoundTrip(req)
}
