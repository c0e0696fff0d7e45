package coaching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kairoshq/kairos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionOpensWithAssistantMessage(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	session, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{Type: TriggerUserRequested})
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusActive, session.Status)
	assert.Equal(t, model.PhaseExploring, session.Phase)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "assistant", session.Messages[0].Role)
	assert.Equal(t, "Welcome! What is your goal?", session.Messages[0].Content)
}

func TestStartSessionIdempotent(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	first, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)

	second, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, env.llm.calls)
}

func TestStartSessionOtherUsersGoalRejected(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	_, err := env.orch.StartSession(context.Background(), "u2", goal.ID, model.SessionKindInitial, Trigger{})
	assert.Error(t, err)
}

func TestSendMessageExecutesDirectives(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	env.llm.replies = []string{
		`{"phase":"exploring","message":"Welcome! What is your goal?"}`,
		`{"phase":"creating","message":"Let's lock it in. [TRACKER]{\"name\":\"Water\",\"unit\":\"glasses\"}[/TRACKER][HABIT]{\"title\":\"Drink water\",\"linked_tracker_id\":\"Water\",\"tracker_threshold\":8}[/HABIT]"}`,
	}

	session, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)

	session, err = env.orch.SendMessage(context.Background(), "u1", session.ID, "Sounds good, let's do it")
	require.NoError(t, err)

	assert.Equal(t, model.PhaseCreating, session.Phase)
	require.Len(t, session.Messages, 3)

	reply := session.Messages[2]
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "Let's lock it in.", reply.Content)
	require.Len(t, reply.ExecutedActions, 2)
	assert.True(t, reply.ExecutedActions[0].Success)
	assert.True(t, reply.ExecutedActions[1].Success, "error: %s", reply.ExecutedActions[1].Error)

	habits, err := env.habits.ByGoal(goal.ID, model.HabitStatusActive)
	require.NoError(t, err)
	assert.Len(t, habits, 1)
}

func TestSendMessageLLMFailureLeavesSessionUntouched(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	session, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)

	env.llm.err = errors.New("provider is down")
	_, err = env.orch.SendMessage(context.Background(), "u1", session.ID, "hello?")
	require.Error(t, err)

	reloaded, err := env.sessions.ByID(session.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Messages, 1)
	assert.Equal(t, model.SessionStatusActive, reloaded.Status)
	assert.Equal(t, model.PhaseExploring, reloaded.Phase)
}

func TestSendMessageTerminalPhaseResolves(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	env.llm.replies = []string{
		`{"phase":"exploring","message":"Welcome!"}`,
		`{"phase":"complete","message":"We're all set. See you next week."}`,
		`{"message":"{\"key_points\":[\"plan created\"],\"habits_added\":[\"Drink water\"],\"next_check_in\":\"2025-06-22\",\"action_items\":[]}"}`,
	}

	session, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)

	session, err = env.orch.SendMessage(context.Background(), "u1", session.ID, "Thanks, bye!")
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusResolved, session.Status)
	require.NotNil(t, session.ResolvedAt)
	require.NotNil(t, session.Summary)
	assert.Equal(t, []string{"plan created"}, session.Summary.KeyPoints)

	// Resolution schedules the next review on the goal.
	reloaded, err := env.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", reloaded.AIContext.LastReviewDate)
	assert.Equal(t, "2025-06-22", reloaded.AIContext.NextReviewDate)

	// No further messages on a resolved session.
	_, err = env.orch.SendMessage(context.Background(), "u1", session.ID, "one more thing")
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestResolveSummaryFailureFallsBack(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	session, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)

	env.llm.err = errors.New("provider is down")
	resolved, err := env.orch.ResolveSession(context.Background(), "u1", session.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusResolved, resolved.Status)
	require.NotNil(t, resolved.Summary)
	assert.NotEmpty(t, resolved.Summary.KeyPoints)
}

func TestSessionLockBlocksNewSession(t *testing.T) {
	env := newTestEnv(t)
	env.orch.lockEnabled = true
	goal := env.newGoal(t, "u1")

	session, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)

	_, err = env.orch.ResolveSession(context.Background(), "u1", session.ID)
	require.NoError(t, err)

	_, err = env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindReview, Trigger{Type: TriggerUserRequested})
	var locked *SessionLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, testNow.Add(20*time.Hour), locked.Until)
}

func TestReviewSessionSeesPreviousSummaries(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	first, err := env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindInitial, Trigger{})
	require.NoError(t, err)
	_, err = env.orch.ResolveSession(context.Background(), "u1", first.ID)
	require.NoError(t, err)

	env.llm.replies = []string{`{"phase":"opening","message":"Good to see you again."}`}
	env.llm.calls = 0
	env.llm.prompts = nil

	_, err = env.orch.StartSession(context.Background(), "u1", goal.ID, model.SessionKindReview, Trigger{Type: TriggerScheduled, Reason: "scheduled review due 2025-06-15"})
	require.NoError(t, err)

	require.NotEmpty(t, env.llm.prompts)
	assert.Contains(t, env.llm.prompts[0], "PREVIOUS SESSIONS")
	assert.Contains(t, env.llm.prompts[0], "RECENT PERFORMANCE")
	assert.Contains(t, env.llm.prompts[0], "scheduled review due")
}

func TestCheckTriggersBreakthroughFiresOnce(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")
	env.formedHabit(t, goal.ID, "u1", "Walk daily")

	env.llm.replies = []string{`{"phase":"opening","message":"Big news: your habit is formed!"}`}

	session, err := env.orch.CheckTriggers(context.Background(), "u1", goal.ID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, TriggerBreakthrough, session.TriggerType)

	_, err = env.orch.ResolveSession(context.Background(), "u1", session.ID)
	require.NoError(t, err)

	// Celebrated habits and a freshly scheduled review mean no refire.
	again, err := env.orch.CheckTriggers(context.Background(), "u1", goal.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestCheckTriggersQuietWhenNothingDue(t *testing.T) {
	env := newTestEnv(t)
	goal := env.newGoal(t, "u1")

	session, err := env.orch.CheckTriggers(context.Background(), "u1", goal.ID)
	require.NoError(t, err)
	assert.Nil(t, session)
}
