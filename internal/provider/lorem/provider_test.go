package lorem

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"agentx/internal/domain/models"
	"agentx/internal/domain/services"
)

func TestSupportsModel(t *testing.T) {
	p := NewProvider()

	if !p.SupportsModel("lorem-fast") {
		t.Error("expected lorem-fast to be supported")
	}
	if p.SupportsModel("claude-haiku-4-5-20251001") {
		t.Error("expected claude model to be unsupported")
	}
}

func TestStreamCompletion_EmitsNonEmptyText(t *testing.T) {
	p := NewProvider()

	events, err := p.StreamCompletion(context.Background(), &services.CompletionRequest{
		Model:    "lorem-fast",
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	var sb strings.Builder
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
		sb.WriteString(ev.Delta)
	}

	if strings.TrimSpace(sb.String()) == "" {
		t.Error("expected non-empty generated text")
	}
}

func TestStreamCompletion_CancellationEndsStream(t *testing.T) {
	p := NewProvider()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := p.StreamCompletion(ctx, &services.CompletionRequest{Model: "lorem-fast"})
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	cancel()

	var last services.StreamEvent
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if !errors.Is(last.Err, context.Canceled) {
					t.Fatalf("expected a trailing cancellation event, last was %+v", last)
				}
				return
			}
			last = ev
		case <-deadline:
			t.Fatal("stream did not terminate after cancellation")
		}
	}
}
