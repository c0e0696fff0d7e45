package service

import (
	"testing"

	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func TestGoalCreateEnforcesSingleActive(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.goals.Create("u1", GoalInput{Title: "Lose weight"})
	require.NoError(t, err)

	_, err = env.goals.Create("u1", GoalInput{Title: "Run a marathon"})
	assert.ErrorIs(t, err, ErrActiveGoalExists)

	// Different user is unaffected.
	_, err = env.goals.Create("u2", GoalInput{Title: "Run a marathon"})
	assert.NoError(t, err)
}

func TestGoalCreateRequiresTitle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.goals.Create("u1", GoalInput{Title: "   "})
	assert.ErrorIs(t, err, ErrGoalTitleRequired)
}

func TestGoalCreateBuildsPrimaryTrackerAndBaseline(t *testing.T) {
	env := newTestEnv(t)

	goal, err := env.goals.Create("u1", GoalInput{
		Title:        "Lose weight",
		MetricName:   "Weight",
		MetricUnit:   "kg",
		InitialValue: float(90),
		TargetValue:  float(80),
	})
	require.NoError(t, err)
	assert.Equal(t, model.DirectionDecrease, goal.Direction)

	trackers, err := env.trackers.ByGoal(goal.ID)
	require.NoError(t, err)
	require.Len(t, trackers, 1)
	assert.Equal(t, "Weight", trackers[0].Name)
	assert.Equal(t, model.TrackerTypePrimary, trackers[0].Type)
	assert.Equal(t, model.DirectionDecrease, trackers[0].Direction)

	log, err := env.logs.ByDate("u1", goal.ID, stats.Day(testNow))
	require.NoError(t, err)
	entry := log.Entry(trackers[0].ID)
	require.NotNil(t, entry)
	assert.Equal(t, 90.0, entry.Value)
}

func TestGoalDeleteCascades(t *testing.T) {
	env := newTestEnv(t)

	goal, err := env.goals.Create("u1", GoalInput{
		Title:        "Lose weight",
		MetricName:   "Weight",
		MetricUnit:   "kg",
		InitialValue: float(90),
		TargetValue:  float(80),
	})
	require.NoError(t, err)

	env.activatedHabit(t, goal.ID, "u1", HabitInput{Title: "Walk daily"})

	err = env.goals.Delete(goal.ID)
	require.NoError(t, err)

	habits, err := env.habits.ByGoal(goal.ID, "")
	require.NoError(t, err)
	assert.Empty(t, habits)

	trackers, err := env.trackers.ByGoal(goal.ID)
	require.NoError(t, err)
	assert.Empty(t, trackers)

	_, err = env.logs.ByDate("u1", goal.ID, stats.Day(testNow))
	assert.Error(t, err)
}

func TestGoalUpdateAIContext(t *testing.T) {
	env := newTestEnv(t)

	goal, err := env.goals.Create("u1", GoalInput{Title: "Sleep better"})
	require.NoError(t, err)

	updated, err := env.goals.UpdateAIContext(goal.ID, func(c *model.AIContext) {
		c.Summary = "night owl, works late"
		c.NextReviewDate = "2025-06-22"
	})
	require.NoError(t, err)
	assert.Equal(t, "night owl, works late", updated.AIContext.Summary)

	reloaded, err := env.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-22", reloaded.AIContext.NextReviewDate)
}
