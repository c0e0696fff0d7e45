package handler

import (
	"net/http"

	"github.com/kairoshq/kairos/internal/coaching"
	"github.com/kairoshq/kairos/internal/ctxkeys"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/service"
)

type CoachingHandler struct {
	orch  *coaching.Orchestrator
	goals *service.GoalService
}

func NewCoachingHandler(orch *coaching.Orchestrator, goals *service.GoalService) *CoachingHandler {
	return &CoachingHandler{orch: orch, goals: goals}
}

type startSessionRequest struct {
	GoalID string `json:"goal_id"`
	Kind   string `json:"kind"`
}

func (h *CoachingHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Kind == "" {
		req.Kind = model.SessionKindInitial
	}
	if req.Kind != model.SessionKindInitial && req.Kind != model.SessionKindReview {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "kind must be initial or review"})
		return
	}

	session, err := h.orch.StartSession(r.Context(), ctxkeys.UserID(r.Context()), req.GoalID, req.Kind,
		coaching.Trigger{Type: coaching.TriggerUserRequested, Reason: "user opened a session"})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

func (h *CoachingHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	session, err := h.orch.SendMessage(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("sessionID"), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *CoachingHandler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.ActiveSession(ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *CoachingHandler) ResolveSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.ResolveSession(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// CheckTriggers is called by clients on app open (or by a scheduler) to see
// whether the coach wants to talk.
func (h *CoachingHandler) CheckTriggers(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.CheckTriggers(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}
	writeJSON(w, http.StatusCreated, session)
}
