package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"agentx/internal/config"
	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/repositories"
	"agentx/internal/domain/services"
)

// ProviderResolver selects a completion provider for a model name.
type ProviderResolver interface {
	ForModel(model string) (services.Provider, error)
}

// Service implements the ChatService interface. One Converse call is one
// relay instance; the only state shared between concurrent calls is the
// store and the provider clients, which are safe for concurrent use.
type Service struct {
	turns         repositories.TurnRepository
	documents     repositories.DocumentRepository
	providers     ProviderResolver
	defaultModel  string
	streamTimeout time.Duration
	logger        *slog.Logger
}

// NewService creates a new chat relay service
func NewService(
	turns repositories.TurnRepository,
	documents repositories.DocumentRepository,
	providers ProviderResolver,
	cfg *config.Config,
	logger *slog.Logger,
) services.ChatService {
	return &Service{
		turns:         turns,
		documents:     documents,
		providers:     providers,
		defaultModel:  cfg.DefaultModel,
		streamTimeout: cfg.StreamTimeout,
		logger:        logger,
	}
}

// History returns the project's turns ordered by creation time ascending.
func (s *Service) History(ctx context.Context, projectID string) ([]models.Turn, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id is required", domain.ErrValidation)
	}
	return s.turns.ListByProject(ctx, projectID)
}

// Converse relays one completion request.
//
// Ordering guarantees within one call: the user turn is persisted (or its
// failure reported) before the upstream stream is opened, and the assistant
// turn is persisted only after the stream was consumed to completion without
// error. The first delta handed to sink commits the response framing: up to
// that point failures come back as typed errors, after it they are written
// in-band and the method returns nil.
func (s *Service) Converse(ctx context.Context, req *services.ConverseRequest, sink services.StreamSink) error {
	if err := s.validateConverseRequest(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	docs, err := s.documents.ListByProject(ctx, req.ProjectID)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	assembled, err := Assemble(req.Messages, docs)
	if err != nil {
		return err
	}

	// The user's turn becomes durable before the upstream call so history
	// records what was asked even if the provider never answers.
	if last := req.Messages[len(req.Messages)-1]; last.Role == models.RoleUser {
		turn := &models.Turn{
			ProjectID: req.ProjectID,
			Role:      models.RoleUser,
			Content:   last.Content,
		}
		if err := s.turns.Append(ctx, turn); err != nil {
			return fmt.Errorf("persist user turn: %w", err)
		}
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	provider, err := s.providers.ForModel(model)
	if err != nil {
		return err
	}

	// The upstream API carries no timeout of its own; the deadline here keeps
	// a stalled provider from hanging the relay forever.
	streamCtx, cancel := context.WithTimeout(ctx, s.streamTimeout)
	defer cancel()

	events, err := provider.StreamCompletion(streamCtx, &services.CompletionRequest{
		Model:    model,
		Messages: assembled,
	})
	if err != nil {
		return asUpstreamError(err)
	}

	return s.relay(ctx, streamCtx, req.ProjectID, model, events, sink)
}

// relay forwards deltas to the sink while accumulating them, then persists
// the assistant turn on clean completion.
func (s *Service) relay(
	ctx context.Context,
	streamCtx context.Context,
	projectID string,
	model string,
	events <-chan services.StreamEvent,
	sink services.StreamSink,
) error {
	var accumulated strings.Builder
	committed := false

	for {
		select {
		case <-streamCtx.Done():
			if ctx.Err() != nil {
				// Caller disconnected: the partial answer is gone from the
				// caller's side too, so it is discarded, not persisted.
				s.logger.Info("client disconnected mid-stream",
					"project_id", projectID,
					"forwarded_bytes", accumulated.Len(),
				)
				if committed {
					return nil
				}
				return fmt.Errorf("client disconnected: %w", ctx.Err())
			}
			// Stream deadline expired.
			s.logger.Warn("upstream stream timed out",
				"project_id", projectID,
				"model", model,
				"forwarded_bytes", accumulated.Len(),
			)
			if committed {
				s.writeErrorMarker(sink, "upstream response timed out")
				return nil
			}
			return domain.NewUpstreamError(0, "upstream response timed out")

		case ev, ok := <-events:
			if !ok {
				// Clean completion. An empty assistant turn is never written.
				if accumulated.Len() == 0 {
					return nil
				}
				s.persistAssistantTurn(ctx, projectID, accumulated.String())
				return nil
			}

			if ev.Err != nil {
				if errors.Is(ev.Err, context.Canceled) && ctx.Err() != nil {
					// Provider echoing the caller's cancellation.
					if committed {
						return nil
					}
					return fmt.Errorf("client disconnected: %w", ctx.Err())
				}
				s.logger.Error("upstream stream failed",
					"project_id", projectID,
					"model", model,
					"committed", committed,
					"error", ev.Err,
				)
				if committed {
					// Status signaling is gone once bytes are out; the
					// partial answer is discarded rather than saved truncated.
					s.writeErrorMarker(sink, ev.Err.Error())
					return nil
				}
				return asUpstreamError(ev.Err)
			}

			if ev.Delta == "" {
				continue
			}
			if err := sink.WriteDelta(ev.Delta); err != nil {
				// The caller's transport rejected the write; nothing sensible
				// can be delivered anymore.
				s.logger.Info("stream write failed, dropping request",
					"project_id", projectID,
					"error", err,
				)
				return nil
			}
			committed = true
			accumulated.WriteString(ev.Delta)
		}
	}
}

// persistAssistantTurn appends the assistant turn after a fully consumed
// stream. The response is already delivered at this point, so a write failure
// is logged and otherwise silent.
func (s *Service) persistAssistantTurn(ctx context.Context, projectID, content string) {
	turn := &models.Turn{
		ProjectID: projectID,
		Role:      models.RoleAssistant,
		Content:   content,
	}
	// The caller may hang up right after the last byte; the write proceeds
	// regardless.
	if err := s.turns.Append(context.WithoutCancel(ctx), turn); err != nil {
		s.logger.Error("failed to persist assistant turn",
			"project_id", projectID,
			"content_length", len(content),
			"error", err,
		)
	}
}

// writeErrorMarker appends the in-band error notice to an already-committed
// stream.
func (s *Service) writeErrorMarker(sink services.StreamSink, reason string) {
	if err := sink.WriteDelta(fmt.Sprintf("\n\n[Error: %s]", reason)); err != nil {
		s.logger.Debug("failed to write in-band error marker", "error", err)
	}
}

func (s *Service) validateConverseRequest(req *services.ConverseRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Messages,
			validation.Required,
			validation.Each(validation.By(validateMessage)),
		),
	)
}

func validateMessage(value interface{}) error {
	msg, ok := value.(models.Message)
	if !ok {
		return errors.New("invalid message")
	}
	return validation.ValidateStruct(&msg,
		validation.Field(&msg.Role,
			validation.Required,
			validation.In(models.RoleUser, models.RoleAssistant, models.RoleSystem),
		),
		validation.Field(&msg.Content, validation.Required),
	)
}

// asUpstreamError normalizes provider failures: errors that already carry a
// status classification pass through, anything else becomes a generic
// upstream error.
func asUpstreamError(err error) error {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return ue
	}
	return domain.NewUpstreamError(0, err.Error())
}
