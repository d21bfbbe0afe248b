package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"agentx/internal/domain"
	"agentx/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error(), "")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

// PathParam extracts a path parameter, writing a 400 when it is missing.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required", "")
		return "", false
	}
	return value, true
}

// PathID extracts a path parameter that must be a UUID. Checking the format
// up front keeps malformed IDs out of the repositories, where they would
// surface as opaque scan errors.
func PathID(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value, ok := PathParam(w, r, name, label)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid "+label, "")
		return "", false
	}
	return value, true
}
