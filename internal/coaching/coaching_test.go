package coaching

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kairoshq/kairos/internal/db"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// stubLLM replays canned replies in order. The last reply repeats once the
// script runs out.
type stubLLM struct {
	replies []string
	err     error
	calls   int
	prompts []string
}

func (s *stubLLM) CompleteWithSystem(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, systemPrompt+"\n---\n"+userPrompt)
	if s.err != nil {
		return "", s.err
	}
	i := s.calls - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i], nil
}

type testEnv struct {
	llm      *stubLLM
	orch     *Orchestrator
	exec     *Executor
	goals    *service.GoalService
	habits   *service.HabitService
	trackers *service.TrackerService
	logs     *service.DailyLogService
	memories *service.MemoryService
	sessions repository.SessionRepository
	habitRepo repository.HabitRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))

	goalRepo := repository.NewGoalRepository(conn)
	trackerRepo := repository.NewTrackerRepository(conn)
	habitRepo := repository.NewHabitRepository(conn)
	logRepo := repository.NewDailyLogRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)
	memoryRepo := repository.NewMemoryRepository(conn)

	trackers := service.NewTrackerService(trackerRepo)
	habits := service.NewHabitService(habitRepo)
	logs := service.NewDailyLogService(logRepo, habitRepo, trackers)
	goals := service.NewGoalService(goalRepo, trackers, habitRepo, logs, logRepo, sessionRepo)
	memories := service.NewMemoryService(memoryRepo, 100)

	exec := NewExecutor(habits, trackers, logs, memories)
	exec.now = func() time.Time { return testNow }
	snap := NewSnapshotter(habits, trackers, logs)
	snap.now = func() time.Time { return testNow }

	stub := &stubLLM{replies: []string{`{"phase":"exploring","message":"Welcome! What is your goal?"}`}}
	orch := NewOrchestrator(stub, goals, habits, memories, sessionRepo, exec, snap, false, 20)
	orch.now = func() time.Time { return testNow }

	return &testEnv{
		llm:       stub,
		orch:      orch,
		exec:      exec,
		goals:     goals,
		habits:    habits,
		trackers:  trackers,
		logs:      logs,
		memories:  memories,
		sessions:  sessionRepo,
		habitRepo: habitRepo,
	}
}

func (e *testEnv) newGoal(t *testing.T, userID string) *model.Goal {
	t.Helper()
	goal, err := e.goals.Create(userID, service.GoalInput{Title: "Get fit"})
	require.NoError(t, err)
	return goal
}

// formedHabit creates an active habit that already crossed the formation
// threshold, with its activation date in the past.
func (e *testEnv) formedHabit(t *testing.T, goalID, userID, title string) *model.Habit {
	t.Helper()
	habit := e.activeHabit(t, goalID, userID, title)
	habit.FormationCount = model.FormationThreshold
	require.NoError(t, e.habitRepo.Update(habit))
	return habit
}

func (e *testEnv) activeHabit(t *testing.T, goalID, userID, title string) *model.Habit {
	t.Helper()
	habit, err := e.habits.Create(goalID, userID, service.HabitInput{Title: title})
	require.NoError(t, err)
	activated := testNow.AddDate(0, 0, -30)
	habit.ActivatedAt = &activated
	require.NoError(t, e.habitRepo.Update(habit))
	return habit
}
