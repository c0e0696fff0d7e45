package handler

import (
	"net/http"
	"time"

	"github.com/kairoshq/kairos/internal/ctxkeys"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
	"github.com/kairoshq/kairos/internal/stats"
)

type DailyLogHandler struct {
	logs  *service.DailyLogService
	goals *service.GoalService
}

func NewDailyLogHandler(logs *service.DailyLogService, goals *service.GoalService) *DailyLogHandler {
	return &DailyLogHandler{logs: logs, goals: goals}
}

// date reads the date path segment, defaulting to today.
func date(r *http.Request) (string, bool) {
	d := r.PathValue("date")
	if d == "" {
		return stats.Day(time.Now()), true
	}
	_, err := time.Parse(model.DateFormat, d)
	return d, err == nil
}

func (h *DailyLogHandler) Show(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	d, ok := date(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	log, err := h.logs.GetOrCreate(goal.UserID, goal.ID, d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *DailyLogHandler) Range(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if end == "" {
		end = stats.Day(time.Now())
	}
	if start == "" {
		start = stats.DaysAgo(time.Now(), 30)
	}

	logs, err := h.logs.Range(goal.UserID, goal.ID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type toggleHabitRequest struct {
	HabitID string `json:"habit_id"`
}

func (h *DailyLogHandler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	d, ok := date(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	var req toggleHabitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	log, err := h.logs.ToggleHabit(goal.UserID, goal.ID, d, req.HabitID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

type logTrackerRequest struct {
	TrackerID string  `json:"tracker_id"`
	Value     float64 `json:"value"`
	Notes     string  `json:"notes"`
}

func (h *DailyLogHandler) LogTracker(w http.ResponseWriter, r *http.Request) {
	goal, err := h.ownedGoal(r)
	if err != nil {
		writeError(w, err)
		return
	}

	d, ok := date(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	var req logTrackerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	log, err := h.logs.LogTracker(goal.UserID, goal.ID, d, req.TrackerID, req.Value, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *DailyLogHandler) ownedGoal(r *http.Request) (*model.Goal, error) {
	goal, err := h.goals.ByID(r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if goal.UserID != ctxkeys.UserID(r.Context()) {
		return nil, repository.ErrGoalNotFound
	}
	return goal, nil
}
