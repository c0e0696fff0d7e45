package routes

import (
	"net/http"

	"github.com/kairoshq/kairos/internal/app"
	"github.com/kairoshq/kairos/internal/handler"
	"github.com/kairoshq/kairos/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	goal := handler.NewGoalHandler(app.GoalService)
	habit := handler.NewHabitHandler(app.HabitService, app.GoalService)
	tracker := handler.NewTrackerHandler(app.TrackerService, app.GoalService)
	dailyLog := handler.NewDailyLogHandler(app.DailyLogService, app.GoalService)
	coach := handler.NewCoachingHandler(app.Orchestrator, app.GoalService)
	memory := handler.NewMemoryHandler(app.MemoryService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Goals
	mux.HandleFunc("POST /api/goals", middleware.RequireUser(goal.Create))
	mux.HandleFunc("GET /api/goals/active", middleware.RequireUser(goal.Active))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireUser(goal.Show))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireUser(goal.Delete))

	// Habits
	mux.HandleFunc("POST /api/goals/{id}/habits", middleware.RequireUser(habit.Create))
	mux.HandleFunc("GET /api/goals/{id}/habits", middleware.RequireUser(habit.List))
	mux.HandleFunc("PATCH /api/habits/{habitID}", middleware.RequireUser(habit.Update))
	mux.HandleFunc("DELETE /api/habits/{habitID}", middleware.RequireUser(habit.Delete))

	// Trackers
	mux.HandleFunc("POST /api/goals/{id}/trackers", middleware.RequireUser(tracker.Create))
	mux.HandleFunc("GET /api/goals/{id}/trackers", middleware.RequireUser(tracker.List))

	// Daily logs
	mux.HandleFunc("GET /api/goals/{id}/logs", middleware.RequireUser(dailyLog.Range))
	mux.HandleFunc("GET /api/goals/{id}/logs/{date}", middleware.RequireUser(dailyLog.Show))
	mux.HandleFunc("POST /api/goals/{id}/logs/{date}/habits/toggle", middleware.RequireUser(dailyLog.ToggleHabit))
	mux.HandleFunc("POST /api/goals/{id}/logs/{date}/trackers", middleware.RequireUser(dailyLog.LogTracker))

	// Coaching (rate limited: each call may hit the LLM provider)
	rateLimiter := middleware.RateLimitCoaching()
	mux.HandleFunc("POST /api/coaching/sessions", middleware.RequireUser(rateLimiter(coach.StartSession)))
	mux.HandleFunc("POST /api/coaching/sessions/{sessionID}/messages", middleware.RequireUser(rateLimiter(coach.SendMessage)))
	mux.HandleFunc("POST /api/coaching/sessions/{sessionID}/resolve", middleware.RequireUser(coach.ResolveSession))
	mux.HandleFunc("GET /api/goals/{id}/coaching/active", middleware.RequireUser(coach.ActiveSession))
	mux.HandleFunc("POST /api/goals/{id}/coaching/check-triggers", middleware.RequireUser(rateLimiter(coach.CheckTriggers)))

	// Memories
	mux.HandleFunc("POST /api/memories", middleware.RequireUser(memory.Create))
	mux.HandleFunc("GET /api/memories", middleware.RequireUser(memory.List))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
	)
}
