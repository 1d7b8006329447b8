package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/apperr"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, errorResponse{Error: message})
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var (
		validation *apperr.ValidationError
		conflict   *apperr.ConflictError
		transition *apperr.InvalidTransitionError
		noChange   *apperr.NoChangeError
		forbidden  *apperr.ForbiddenError
		transient  *apperr.TransientError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &transition), errors.As(err, &noChange):
		return http.StatusConflict
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	statusCode := statusForError(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeErrorResponse(w, statusCode, message)
}

// Actor attribution headers, populated by the session layer in front of this
// service.
const (
	headerActorType = "X-Actor-Type"
	headerActorID   = "X-Actor-Id"
)

// actorFromRequest translates the attribution headers into an Actor. Requests
// with no recognizable attribution are anonymous customers.
func actorFromRequest(r *http.Request) models.Actor {
	actor := models.Actor{Type: models.ActorCustomer}
	switch models.ActorType(r.Header.Get(headerActorType)) {
	case models.ActorAdmin:
		actor.Type = models.ActorAdmin
	case models.ActorSystem:
		actor.Type = models.ActorSystem
	}
	if raw := r.Header.Get(headerActorID); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			actor.ID = &id
		}
	}
	return actor
}

func isPrivileged(actor models.Actor) bool {
	return actor.Type == models.ActorAdmin || actor.Type == models.ActorSystem
}
