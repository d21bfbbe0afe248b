package handler

import (
	"log/slog"
	"net/http"

	"agentx/internal/domain/services"
	"agentx/internal/httputil"
)

// DocumentHandler handles document HTTP requests. Bodies carry extracted
// text; extraction from PDFs or other formats happens client-side or in a
// separate service.
type DocumentHandler struct {
	documentService services.DocumentService
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService services.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// HealthCheck reports liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateDocument registers an extracted document
// POST /api/files
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	doc, err := h.documentService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListDocuments returns document metadata for a project
// GET /api/files/{projectId}
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathID(w, r, "projectId", "Project ID")
	if !ok {
		return
	}

	docs, err := h.documentService.ListDocuments(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// DeleteDocument removes a document
// DELETE /api/files/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID, ok := PathID(w, r, "id", "File ID")
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(r.Context(), docID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}
