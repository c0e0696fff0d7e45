package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kairoshq/kairos/internal/coaching"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and masked as 500s.
func writeError(w http.ResponseWriter, err error) {
	var locked *coaching.SessionLockedError
	switch {
	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrHabitNotFound),
		errors.Is(err, repository.ErrTrackerNotFound),
		errors.Is(err, repository.ErrDailyLogNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, coaching.ErrNotSessionOwner):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrActiveGoalExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &locked):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrGoalTitleRequired),
		errors.Is(err, service.ErrHabitTitleRequired),
		errors.Is(err, service.ErrTrackerNameRequired),
		errors.Is(err, service.ErrMemoryTextRequired),
		errors.Is(err, service.ErrHabitNotActivated),
		errors.Is(err, service.ErrHabitNotActive),
		errors.Is(err, coaching.ErrSessionNotActive):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
