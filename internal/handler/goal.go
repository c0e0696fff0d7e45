package handler

import (
	"net/http"

	"github.com/kairoshq/kairos/internal/ctxkeys"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
)

type GoalHandler struct {
	goals *service.GoalService
}

func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

type createGoalRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TargetDate   *string  `json:"target_date"`
	MetricName   string   `json:"metric_name"`
	MetricUnit   string   `json:"metric_unit"`
	InitialValue *float64 `json:"initial_value"`
	TargetValue  *float64 `json:"target_value"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal, err := h.goals.Create(ctxkeys.UserID(r.Context()), service.GoalInput{
		Title:        req.Title,
		Description:  req.Description,
		TargetDate:   req.TargetDate,
		MetricName:   req.MetricName,
		MetricUnit:   req.MetricUnit,
		InitialValue: req.InitialValue,
		TargetValue:  req.TargetValue,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Active(w http.ResponseWriter, r *http.Request) {
	goal, err := h.goals.ActiveByUser(ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Show(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.goals.Delete(goal.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) ownedGoal(r *http.Request) (*model.Goal, error) {
	goal, err := h.goals.ByID(r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if goal.UserID != ctxkeys.UserID(r.Context()) {
		return nil, repository.ErrGoalNotFound
	}
	return goal, nil
}
