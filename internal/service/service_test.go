package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kairoshq/kairos/internal/db"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/stretchr/testify/require"
)

// Fixed clock so activation and streak math is deterministic.
var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	goals    *GoalService
	trackers *TrackerService
	habits   *HabitService
	logs     *DailyLogService
	memories *MemoryService

	habitRepo   repository.HabitRepository
	trackerRepo repository.TrackerRepository
	logRepo     repository.DailyLogRepository
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	err = db.RunMigrations(conn.DB, "sqlite")
	require.NoError(t, err)
	return conn
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := newTestDB(t)

	goalRepo := repository.NewGoalRepository(conn)
	trackerRepo := repository.NewTrackerRepository(conn)
	habitRepo := repository.NewHabitRepository(conn)
	logRepo := repository.NewDailyLogRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)
	memoryRepo := repository.NewMemoryRepository(conn)

	trackers := NewTrackerService(trackerRepo)
	habits := NewHabitService(habitRepo)
	habits.now = func() time.Time { return testNow }
	logs := NewDailyLogService(logRepo, habitRepo, trackers)
	logs.now = func() time.Time { return testNow }
	goals := NewGoalService(goalRepo, trackers, habitRepo, logs, logRepo, sessionRepo)
	goals.now = func() time.Time { return testNow }
	memories := NewMemoryService(memoryRepo, 100)

	return &testEnv{
		goals:       goals,
		trackers:    trackers,
		habits:      habits,
		logs:        logs,
		memories:    memories,
		habitRepo:   habitRepo,
		trackerRepo: trackerRepo,
		logRepo:     logRepo,
	}
}

// activatedHabit creates a habit whose activation date is already in the
// past, so it can be logged today.
func (e *testEnv) activatedHabit(t *testing.T, goalID, userID string, in HabitInput) *model.Habit {
	t.Helper()
	habit, err := e.habits.Create(goalID, userID, in)
	require.NoError(t, err)

	activated := testNow.AddDate(0, 0, -10)
	habit.ActivatedAt = &activated
	require.NoError(t, e.habitRepo.Update(habit))
	return habit
}
