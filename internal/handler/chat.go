package handler

import (
	"log/slog"
	"net/http"

	"agentx/internal/domain/services"
	"agentx/internal/httputil"
)

// ChatHandler handles conversation history and the streaming completion
// endpoint.
type ChatHandler struct {
	chatService services.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// History returns a project's conversation log, oldest first
// GET /api/chat/{projectId}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathID(w, r, "projectId", "Project ID")
	if !ok {
		return
	}

	turns, err := h.chatService.History(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, turns)
}

// Converse relays one completion as a chunked plain-text stream
// POST /api/chat
//
// Error signaling depends on where the failure happens: before the first
// forwarded delta the response is a status-coded JSON body; after it, the
// relay has already appended an in-band error marker to the stream and there
// is nothing further to send.
func (h *ChatHandler) Converse(w http.ResponseWriter, r *http.Request) {
	var req services.ConverseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	sink := newStreamSink(w)
	err := h.chatService.Converse(r.Context(), &req, sink)
	if err == nil {
		return
	}

	if sink.Started() {
		// Committed stream: status and headers are out the door.
		h.logger.Debug("post-commitment relay error", "error", err)
		return
	}

	handleError(w, err)
}

// streamSink adapts http.ResponseWriter to the relay's delta sink. Headers
// go out lazily on the first delta so pre-stream failures can still use a
// proper status code.
type streamSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newStreamSink(w http.ResponseWriter) *streamSink {
	flusher, _ := w.(http.Flusher)
	return &streamSink{w: w, flusher: flusher}
}

// WriteDelta writes one delta and flushes it to the transport.
func (s *streamSink) WriteDelta(delta string) error {
	if !s.started {
		s.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	if _, err := s.w.Write([]byte(delta)); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Started reports whether any byte has been handed to the transport.
func (s *streamSink) Started() bool {
	return s.started
}
