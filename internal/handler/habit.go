package handler

import (
	"net/http"

	"github.com/kairoshq/kairos/internal/ctxkeys"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
)

type HabitHandler struct {
	habits *service.HabitService
	goals  *service.GoalService
}

func NewHabitHandler(habits *service.HabitService, goals *service.GoalService) *HabitHandler {
	return &HabitHandler{habits: habits, goals: goals}
}

type createHabitRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Difficulty       string   `json:"difficulty"`
	Frequency        string   `json:"frequency"`
	Reasoning        string   `json:"reasoning"`
	Position         int      `json:"order"`
	LinkedTrackerID  *string  `json:"linked_tracker_id"`
	TrackerThreshold *float64 `json:"tracker_threshold"`
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createHabitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	habit, err := h.habits.Create(goal.ID, goal.UserID, service.HabitInput{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		Frequency:        req.Frequency,
		Reasoning:        req.Reasoning,
		Position:         req.Position,
		LinkedTrackerID:  req.LinkedTrackerID,
		TrackerThreshold: req.TrackerThreshold,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	habits, err := h.habits.ByGoal(goal.ID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	habit, err := h.ownedHabit(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var upd model.HabitUpdate
	if !decodeBody(w, r, &upd) {
		return
	}

	updated, err := h.habits.Update(habit.ID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete archives the habit; history stays queryable.
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	habit, err := h.ownedHabit(r)
	if err != nil {
		writeError(w, err)
		return
	}

	_, err = h.habits.Archive(habit.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HabitHandler) ownedGoal(r *http.Request) (*model.Goal, error) {
	goal, err := h.goals.ByID(r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if goal.UserID != ctxkeys.UserID(r.Context()) {
		return nil, repository.ErrGoalNotFound
	}
	return goal, nil
}

func (h *HabitHandler) ownedHabit(r *http.Request) (*model.Habit, error) {
	habit, err := h.habits.ByID(r.PathValue("habitID"))
	if err != nil {
		return nil, err
	}
	if habit.UserID != ctxkeys.UserID(r.Context()) {
		return nil, repository.ErrHabitNotFound
	}
	return habit, nil
}
