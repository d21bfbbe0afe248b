package services

import (
	"context"

	"agentx/internal/domain/models"
)

// StreamEvent is one event emitted by a provider stream: either a text delta
// or a terminal error. The channel closes after a terminal error or when the
// upstream sequence is exhausted cleanly.
type StreamEvent struct {
	Delta string
	Err   error
}

// CompletionRequest is the provider-facing request: the fully assembled
// message list and the model to run it against.
type CompletionRequest struct {
	Model    string
	Messages []models.Message
}

// Provider is a streaming completion backend. Implementations wrap one
// upstream API (OpenRouter, Anthropic, the lorem fake).
//
// StreamCompletion returns a synchronous error when the upstream rejects the
// request before producing any delta; such errors carry a
// *domain.UpstreamError with the provider-reported status when one is
// available. After a stream is returned, failures arrive as StreamEvent.Err
// and carry no status classification. Cancelling ctx stops the stream and
// releases the upstream connection.
type Provider interface {
	Name() string
	SupportsModel(model string) bool
	StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error)
}
