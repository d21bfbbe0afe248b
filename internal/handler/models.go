package handler

import (
	"log/slog"
	"net/http"

	"agentx/internal/capabilities"
	"agentx/internal/httputil"
)

// ModelsHandler serves the model catalog.
type ModelsHandler struct {
	catalog *capabilities.Registry
	logger  *slog.Logger
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(catalog *capabilities.Registry, logger *slog.Logger) *ModelsHandler {
	return &ModelsHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListModels returns all known models grouped by provider
// GET /api/models
func (h *ModelsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.catalog.Catalogs())
}
