package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"agentx/internal/config"
	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/services"
)

// fakeTurnRepo is an in-memory append-only turn store.
type fakeTurnRepo struct {
	mu       sync.Mutex
	turns    []models.Turn
	failRole string // Append fails for turns with this role
}

func (r *fakeTurnRepo) Append(ctx context.Context, turn *models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRole != "" && turn.Role == r.failRole {
		return fmt.Errorf("append turn: store unavailable")
	}
	turn.ID = fmt.Sprintf("turn-%d", len(r.turns)+1)
	turn.CreatedAt = time.Now()
	r.turns = append(r.turns, *turn)
	return nil
}

func (r *fakeTurnRepo) ListByProject(ctx context.Context, projectID string) ([]models.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var turns []models.Turn
	for _, t := range r.turns {
		if t.ProjectID == projectID {
			turns = append(turns, t)
		}
	}
	return turns, nil
}

func (r *fakeTurnRepo) DeleteByProject(ctx context.Context, projectID string) error {
	return nil
}

func (r *fakeTurnRepo) byRole(role string) []models.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	var turns []models.Turn
	for _, t := range r.turns {
		if t.Role == role {
			turns = append(turns, t)
		}
	}
	return turns
}

// fakeDocRepo serves a fixed document list.
type fakeDocRepo struct {
	docs []models.Document
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error { return nil }

func (r *fakeDocRepo) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	return r.docs, nil
}

func (r *fakeDocRepo) ListInfoByProject(ctx context.Context, projectID string) ([]models.DocumentInfo, error) {
	return nil, nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, id string) error              { return nil }
func (r *fakeDocRepo) DeleteByProject(ctx context.Context, projectID string) error { return nil }

// scriptedProvider replays a fixed event sequence, recording the request it
// received.
type scriptedProvider struct {
	events  []services.StreamEvent
	openErr error

	mu      sync.Mutex
	lastReq *services.CompletionRequest
}

func (p *scriptedProvider) Name() string                    { return "scripted" }
func (p *scriptedProvider) SupportsModel(model string) bool { return true }

func (p *scriptedProvider) StreamCompletion(ctx context.Context, req *services.CompletionRequest) (<-chan services.StreamEvent, error) {
	p.mu.Lock()
	p.lastReq = req
	p.mu.Unlock()

	if p.openErr != nil {
		return nil, p.openErr
	}

	ch := make(chan services.StreamEvent, len(p.events)+1)
	go func() {
		defer close(ch)
		for _, ev := range p.events {
			ch <- ev
		}
	}()
	return ch, nil
}

func (p *scriptedProvider) request() *services.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReq
}

// hangingProvider emits one delta, then waits for cancellation.
type hangingProvider struct{}

func (p *hangingProvider) Name() string                    { return "hanging" }
func (p *hangingProvider) SupportsModel(model string) bool { return true }

func (p *hangingProvider) StreamCompletion(ctx context.Context, req *services.CompletionRequest) (<-chan services.StreamEvent, error) {
	ch := make(chan services.StreamEvent, 2)
	go func() {
		defer close(ch)
		ch <- services.StreamEvent{Delta: "Hel"}
		<-ctx.Done()
		ch <- services.StreamEvent{Err: ctx.Err()}
	}()
	return ch, nil
}

type fakeResolver struct {
	provider services.Provider
}

func (r *fakeResolver) ForModel(model string) (services.Provider, error) {
	return r.provider, nil
}

// collectSink records deltas; onWrite runs after each successful write.
type collectSink struct {
	mu      sync.Mutex
	deltas  []string
	onWrite func()
}

func (s *collectSink) WriteDelta(delta string) error {
	s.mu.Lock()
	s.deltas = append(s.deltas, delta)
	s.mu.Unlock()
	if s.onWrite != nil {
		s.onWrite()
	}
	return nil
}

func (s *collectSink) body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.deltas, "")
}

func newTestService(turns *fakeTurnRepo, docs *fakeDocRepo, p services.Provider) services.ChatService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{
		DefaultModel:  "test-model",
		StreamTimeout: 5 * time.Second,
	}
	return NewService(turns, docs, &fakeResolver{provider: p}, cfg, logger)
}

func userRequest(content string) *services.ConverseRequest {
	return &services.ConverseRequest{
		ProjectID: "project-1",
		Messages: []models.Message{
			{Role: "user", Content: content},
		},
	}
}

func TestConverse_StreamsAndPersists(t *testing.T) {
	turns := &fakeTurnRepo{}
	provider := &scriptedProvider{
		events: []services.StreamEvent{
			{Delta: "Hel"},
			{Delta: "lo"},
		},
	}
	svc := newTestService(turns, &fakeDocRepo{}, provider)
	sink := &collectSink{}

	if err := svc.Converse(context.Background(), userRequest("hi"), sink); err != nil {
		t.Fatalf("Converse failed: %v", err)
	}

	if sink.body() != "Hello" {
		t.Errorf("expected body 'Hello', got '%s'", sink.body())
	}

	userTurns := turns.byRole("user")
	if len(userTurns) != 1 || userTurns[0].Content != "hi" {
		t.Fatalf("expected one user turn with content 'hi', got %+v", userTurns)
	}
	assistantTurns := turns.byRole("assistant")
	if len(assistantTurns) != 1 || assistantTurns[0].Content != "Hello" {
		t.Fatalf("expected one assistant turn with content 'Hello', got %+v", assistantTurns)
	}
}

func TestConverse_EmptyStreamPersistsNoAssistantTurn(t *testing.T) {
	turns := &fakeTurnRepo{}
	svc := newTestService(turns, &fakeDocRepo{}, &scriptedProvider{})
	sink := &collectSink{}

	if err := svc.Converse(context.Background(), userRequest("hi"), sink); err != nil {
		t.Fatalf("Converse failed: %v", err)
	}

	if got := turns.byRole("assistant"); len(got) != 0 {
		t.Errorf("expected no assistant turn for empty stream, got %+v", got)
	}
}

func TestConverse_MidStreamFailureDiscardsPartial(t *testing.T) {
	turns := &fakeTurnRepo{}
	provider := &scriptedProvider{
		events: []services.StreamEvent{
			{Delta: "Hel"},
			{Err: errors.New("connection reset")},
		},
	}
	svc := newTestService(turns, &fakeDocRepo{}, provider)
	sink := &collectSink{}

	// Post-commitment failures are in-band, not returned.
	if err := svc.Converse(context.Background(), userRequest("hi"), sink); err != nil {
		t.Fatalf("expected nil error after commitment, got %v", err)
	}

	body := sink.body()
	if !strings.HasPrefix(body, "Hel") {
		t.Errorf("expected partial content first, got '%s'", body)
	}
	if !strings.Contains(body, "[Error: connection reset]") {
		t.Errorf("expected in-band error marker, got '%s'", body)
	}

	if got := turns.byRole("assistant"); len(got) != 0 {
		t.Errorf("expected partial content discarded, got %+v", got)
	}
}

func TestConverse_PreStreamRejectionIsClassified(t *testing.T) {
	tests := []struct {
		name       string
		openErr    error
		wantStatus int
	}{
		{
			name:       "rate limited",
			openErr:    domain.NewUpstreamError(429, "rate limited"),
			wantStatus: 429,
		},
		{
			name:       "payment required",
			openErr:    domain.NewUpstreamError(402, "quota exceeded"),
			wantStatus: 402,
		},
		{
			name:       "server error",
			openErr:    domain.NewUpstreamError(503, "overloaded"),
			wantStatus: 500,
		},
		{
			name:       "unclassified",
			openErr:    errors.New("connection refused"),
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := &fakeTurnRepo{}
			svc := newTestService(turns, &fakeDocRepo{}, &scriptedProvider{openErr: tt.openErr})
			sink := &collectSink{}

			err := svc.Converse(context.Background(), userRequest("hi"), sink)
			if err == nil {
				t.Fatal("expected error")
			}

			var ue *domain.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if ue.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, ue.StatusCode())
			}
			if sink.body() != "" {
				t.Errorf("expected no bytes forwarded, got '%s'", sink.body())
			}

			// The user turn is durable even though the upstream rejected.
			if got := turns.byRole("user"); len(got) != 1 {
				t.Errorf("expected user turn persisted before upstream call, got %+v", got)
			}
		})
	}
}

func TestConverse_UserTurnPersistFailureAbortsBeforeUpstream(t *testing.T) {
	turns := &fakeTurnRepo{failRole: "user"}
	provider := &scriptedProvider{
		events: []services.StreamEvent{{Delta: "never"}},
	}
	svc := newTestService(turns, &fakeDocRepo{}, provider)
	sink := &collectSink{}

	err := svc.Converse(context.Background(), userRequest("hi"), sink)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected generic failure, got validation error: %v", err)
	}
	if provider.request() != nil {
		t.Error("expected upstream call to be skipped after persistence failure")
	}
	if sink.body() != "" {
		t.Errorf("expected no bytes forwarded, got '%s'", sink.body())
	}
}

func TestConverse_AssistantPersistFailureIsSilent(t *testing.T) {
	turns := &fakeTurnRepo{failRole: "assistant"}
	provider := &scriptedProvider{
		events: []services.StreamEvent{{Delta: "Hello"}},
	}
	svc := newTestService(turns, &fakeDocRepo{}, provider)
	sink := &collectSink{}

	// The caller already has the full reply; the failed write is only logged.
	if err := svc.Converse(context.Background(), userRequest("hi"), sink); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if sink.body() != "Hello" {
		t.Errorf("expected full body, got '%s'", sink.body())
	}
}

func TestConverse_LastMessageNotUserSkipsUserTurn(t *testing.T) {
	turns := &fakeTurnRepo{}
	provider := &scriptedProvider{
		events: []services.StreamEvent{{Delta: "ok"}},
	}
	svc := newTestService(turns, &fakeDocRepo{}, provider)

	req := &services.ConverseRequest{
		ProjectID: "project-1",
		Messages: []models.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
	}
	if err := svc.Converse(context.Background(), req, &collectSink{}); err != nil {
		t.Fatalf("Converse failed: %v", err)
	}

	if got := turns.byRole("user"); len(got) != 0 {
		t.Errorf("expected no user turn when last message is not from the user, got %+v", got)
	}
}

func TestConverse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  *services.ConverseRequest
	}{
		{
			name: "empty messages",
			req:  &services.ConverseRequest{ProjectID: "project-1"},
		},
		{
			name: "missing project id",
			req: &services.ConverseRequest{
				Messages: []models.Message{{Role: "user", Content: "hi"}},
			},
		},
		{
			name: "unknown role",
			req: &services.ConverseRequest{
				ProjectID: "project-1",
				Messages:  []models.Message{{Role: "robot", Content: "hi"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := &fakeTurnRepo{}
			svc := newTestService(turns, &fakeDocRepo{}, &scriptedProvider{})

			err := svc.Converse(context.Background(), tt.req, &collectSink{})
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(turns.byRole("user")) != 0 {
				t.Error("expected nothing persisted for invalid request")
			}
		})
	}
}

func TestConverse_DocumentsReachTheProvider(t *testing.T) {
	docs := &fakeDocRepo{
		docs: []models.Document{{Filename: "a.txt", Content: "X"}},
	}
	provider := &scriptedProvider{
		events: []services.StreamEvent{{Delta: "ok"}},
	}
	svc := newTestService(&fakeTurnRepo{}, docs, provider)

	if err := svc.Converse(context.Background(), userRequest("hi"), &collectSink{}); err != nil {
		t.Fatalf("Converse failed: %v", err)
	}

	req := provider.request()
	if req == nil {
		t.Fatal("provider was not called")
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected assembled list of 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != models.RoleSystem || !strings.Contains(req.Messages[0].Content, "a.txt") {
		t.Errorf("expected document context in leading system message, got %+v", req.Messages[0])
	}
	if req.Model != "test-model" {
		t.Errorf("expected default model, got '%s'", req.Model)
	}
}

func TestConverse_CallerDisconnectDiscardsPartial(t *testing.T) {
	turns := &fakeTurnRepo{}
	svc := newTestService(turns, &fakeDocRepo{}, &hangingProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	sink := &collectSink{onWrite: cancel}

	if err := svc.Converse(ctx, userRequest("hi"), sink); err != nil {
		t.Fatalf("expected nil error after commitment, got %v", err)
	}

	if got := turns.byRole("assistant"); len(got) != 0 {
		t.Errorf("expected no assistant turn after disconnect, got %+v", got)
	}
}

func TestConverse_StreamTimeout(t *testing.T) {
	turns := &fakeTurnRepo{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{
		DefaultModel:  "test-model",
		StreamTimeout: 20 * time.Millisecond,
	}
	svc := NewService(turns, &fakeDocRepo{}, &fakeResolver{provider: &hangingProvider{}}, cfg, logger)
	sink := &collectSink{}

	// The hanging provider emits one delta then stalls; the deadline turns
	// that into an in-band failure.
	if err := svc.Converse(context.Background(), userRequest("hi"), sink); err != nil {
		t.Fatalf("expected nil error after commitment, got %v", err)
	}

	if !strings.Contains(sink.body(), "[Error:") {
		t.Errorf("expected in-band timeout marker, got '%s'", sink.body())
	}
	if got := turns.byRole("assistant"); len(got) != 0 {
		t.Errorf("expected no assistant turn after timeout, got %+v", got)
	}
}

func TestHistory_RequiresProjectID(t *testing.T) {
	svc := newTestService(&fakeTurnRepo{}, &fakeDocRepo{}, &scriptedProvider{})

	_, err := svc.History(context.Background(), "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
