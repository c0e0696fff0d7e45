package handler

import (
	"net/http"

	"github.com/kairoshq/kairos/internal/ctxkeys"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
)

type TrackerHandler struct {
	trackers *service.TrackerService
	goals    *service.GoalService
}

func NewTrackerHandler(trackers *service.TrackerService, goals *service.GoalService) *TrackerHandler {
	return &TrackerHandler{trackers: trackers, goals: goals}
}

type createTrackerRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	Type        string   `json:"type"`
	Direction   string   `json:"direction"`
	TargetValue *float64 `json:"target_value"`
}

func (h *TrackerHandler) Create(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createTrackerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tracker, err := h.trackers.Create(goal.ID, goal.UserID, service.TrackerInput{
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		Type:        req.Type,
		Direction:   req.Direction,
		TargetValue: req.TargetValue,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tracker)
}

func (h *TrackerHandler) List(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	trackers, err := h.trackers.ByGoal(goal.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trackers)
}

func (h *TrackerHandler) ownedGoal(r *http.Request) (*model.Goal, error) {
	goal, err := h.goals.ByID(r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if goal.UserID != ctxkeys.UserID(r.Context()) {
		return nil, repository.ErrGoalNotFound
	}
	return goal, nil
}
