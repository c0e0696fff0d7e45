package coaching

import (
	"testing"

	"github.com/kairoshq/kairos/internal/directive"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, env *testEnv, userID, goalID, text string) []model.ExecutedAction {
	t.Helper()
	_, directives := directive.Parse(text)
	return env.exec.Execute(userID, goalID, directives)
}

func TestExecutorCreatesTrackerThenHabitByName(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	actions := execute(t, env, "u1", goal.ID, `
[TRACKER]{"name":"Water","unit":"glasses","direction":"increase"}[/TRACKER]
[HABIT]{"title":"Drink enough water","linked_tracker_id":"Water","tracker_threshold":8}[/HABIT]`)

	require.Len(t, actions, 2)
	assert.True(t, actions[0].Success)
	assert.True(t, actions[1].Success, "error: %s", actions[1].Error)

	habits, err := env.habits.ByGoal(goal.ID, model.HabitStatusActive)
	require.NoError(t, err)
	require.Len(t, habits, 1)
	require.NotNil(t, habits[0].LinkedTrackerID)
	require.NotNil(t, habits[0].TrackerThreshold)
	assert.Equal(t, 8.0, *habits[0].TrackerThreshold)

	tracker, err := env.trackers.Resolve(goal.ID, "Water")
	require.NoError(t, err)
	assert.Equal(t, tracker.ID, *habits[0].LinkedTrackerID)
}

func TestExecutorBlocksSecondHabitWhileUnformed(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	actions := execute(t, env, "u1", goal.ID, `
[HABIT]{"title":"Walk daily"}[/HABIT]
[HABIT]{"title":"Sleep by 11pm"}[/HABIT]`)

	require.Len(t, actions, 2)
	assert.True(t, actions[0].Success)
	assert.False(t, actions[1].Success)
	assert.Contains(t, actions[1].Error, "not formed")

	habits, err := env.habits.ByGoal(goal.ID, model.HabitStatusActive)
	require.NoError(t, err)
	assert.Len(t, habits, 1)
}

func TestExecutorAllowsHabitOnceExistingFormed(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")
	env.formedHabit(t, goal.ID, "u1", "Walk daily")

	actions := execute(t, env, "u1", goal.ID, `[HABIT]{"title":"Sleep by 11pm"}[/HABIT]`)

	require.Len(t, actions, 1)
	assert.True(t, actions[0].Success, "error: %s", actions[0].Error)
}

func TestExecutorLogUnknownTrackerFails(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	actions := execute(t, env, "u1", goal.ID, `[LOG]{"key":"Steps","value":9000}[/LOG]`)

	require.Len(t, actions, 1)
	assert.False(t, actions[0].Success)
	assert.Contains(t, actions[0].Error, "not found")
}

func TestExecutorLogResolvesCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	_, err := env.trackers.Create(goal.ID, "u1", service.TrackerInput{Name: "Steps", Unit: "steps"})
	require.NoError(t, err)

	actions := execute(t, env, "u1", goal.ID, `[LOG]{"key":"steps","value":"9000"}[/LOG]`)

	require.Len(t, actions, 1)
	assert.True(t, actions[0].Success, "error: %s", actions[0].Error)
}

func TestExecutorMalformedDirectiveAudited(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	actions := execute(t, env, "u1", goal.ID, `[HABIT]{"title": }[/HABIT]`)

	require.Len(t, actions, 1)
	assert.False(t, actions[0].Success)
	assert.Equal(t, "HABIT", actions[0].Type)
	assert.Contains(t, actions[0].Error, "invalid JSON")
}

func TestExecutorUpdateHabitCrossGoalRejected(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")
	other := env.newGoal(t, "u2")
	habit := env.activeHabit(t, other.ID, "u2", "Their habit")

	actions := execute(t, env, "u1", goal.ID,
		`[UPDATE_HABIT]{"habit_id":"`+habit.ID+`","title":"Hijacked"}[/UPDATE_HABIT]`)

	require.Len(t, actions, 1)
	assert.False(t, actions[0].Success)
	assert.Contains(t, actions[0].Error, "does not belong")
}

func TestExecutorDeleteHabitArchives(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")
	habit := env.activeHabit(t, goal.ID, "u1", "Walk daily")

	actions := execute(t, env, "u1", goal.ID,
		`[DELETE_HABIT]{"habit_id":"`+habit.ID+`"}[/DELETE_HABIT]`)

	require.Len(t, actions, 1)
	assert.True(t, actions[0].Success)

	reloaded, err := env.habits.ByID(habit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.HabitStatusArchived, reloaded.Status)
}

func TestExecutorMemoryDirective(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	actions := execute(t, env, "u1", goal.ID,
		`[MEMORY]{"text":"Travels for work most weeks","type":"schedule"}[/MEMORY]`)

	require.Len(t, actions, 1)
	assert.True(t, actions[0].Success)

	memories, err := env.memories.Recent("u1", 10)
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, model.MemoryTypeSchedule, memories[0].Type)
}
