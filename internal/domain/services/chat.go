package services

import (
	"context"

	"agentx/internal/domain/models"
)

// ConverseRequest is the DTO for a chat completion request.
type ConverseRequest struct {
	ProjectID string           `json:"project_id"`
	Model     string           `json:"model,omitempty"`
	Messages  []models.Message `json:"messages"`
}

// StreamSink receives deltas as they arrive from the upstream provider.
// WriteDelta must deliver the text to the caller's transport before
// returning; the first successful call commits the response framing.
type StreamSink interface {
	WriteDelta(delta string) error
}

// ChatService relays chat completions between callers and the upstream
// provider and owns the conversation log.
type ChatService interface {
	// Converse runs one completion round trip: merges project documents into
	// the message list, persists the user's turn, streams the upstream
	// response through sink and persists the assistant turn on clean
	// completion.
	//
	// A non-nil error means no delta was forwarded and the caller can still
	// send a structured error response. Failures after the first forwarded
	// delta are reported in-band through sink and return nil.
	Converse(ctx context.Context, req *ConverseRequest, sink StreamSink) error

	// History returns the project's turns ordered by creation time ascending.
	History(ctx context.Context, projectID string) ([]models.Turn, error)
}
