package handler

import (
	"log/slog"
	"net/http"

	"agentx/internal/domain/services"
	"agentx/internal/httputil"
)

// ProjectHandler handles project and prompt HTTP requests.
type ProjectHandler struct {
	projectService services.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// ListProjects returns the authenticated user's projects
// GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	projects, err := h.projectService.ListProjects(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projects)
}

// CreateProject creates a project
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	req.UserID = userID

	project, err := h.projectService.CreateProject(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// GetProject retrieves a single project
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathID(w, r, "id", "Project ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	project, err := h.projectService.GetProject(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project and everything under it
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathID(w, r, "id", "Project ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	if err := h.projectService.DeleteProject(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Project and all associated data deleted successfully",
	})
}

// CreatePrompt saves a prompt under a project
// POST /api/projects/{id}/prompts
func (h *ProjectHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathID(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req services.CreatePromptRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	prompt, err := h.projectService.CreatePrompt(r.Context(), projectID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, prompt)
}

// ListPrompts returns a project's prompts
// GET /api/projects/{id}/prompts
func (h *ProjectHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathID(w, r, "id", "Project ID")
	if !ok {
		return
	}

	prompts, err := h.projectService.ListPrompts(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prompts)
}
