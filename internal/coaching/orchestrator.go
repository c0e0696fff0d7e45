package coaching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kairoshq/kairos/internal/directive"
	"github.com/kairoshq/kairos/internal/llm"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
	"github.com/kairoshq/kairos/internal/stats"
)

var (
	ErrSessionNotActive = errors.New("session is not active")
	ErrNotSessionOwner  = errors.New("session does not belong to this user")
)

// SessionLockedError is returned when the post-session cooldown has not
// elapsed yet.
type SessionLockedError struct {
	Until time.Time
}

func (e *SessionLockedError) Error() string {
	return fmt.Sprintf("next coaching session allowed at %s", e.Until.Format(time.RFC3339))
}

// reviewIntervalDays schedules the next periodic review after a session
// resolves.
const reviewIntervalDays = 7

// promptMemoryLimit caps how many memories are injected into prompts.
const promptMemoryLimit = 20

// previousSummaryCount is how many resolved-session summaries a review
// session sees.
const previousSummaryCount = 3

// Orchestrator runs coaching sessions end to end: prompt assembly, the model
// call, directive execution, phase bookkeeping, and resolution.
type Orchestrator struct {
	llm      llm.Client
	goals    *service.GoalService
	habits   *service.HabitService
	memories *service.MemoryService
	sessions repository.SessionRepository
	exec     *Executor
	snap     *Snapshotter

	lockEnabled bool
	lockHours   int
	now         func() time.Time
}

func NewOrchestrator(
	client llm.Client,
	goals *service.GoalService,
	habits *service.HabitService,
	memories *service.MemoryService,
	sessions repository.SessionRepository,
	exec *Executor,
	snap *Snapshotter,
	lockEnabled bool,
	lockHours int,
) *Orchestrator {
	return &Orchestrator{
		llm:         client,
		goals:       goals,
		habits:      habits,
		memories:    memories,
		sessions:    sessions,
		exec:        exec,
		snap:        snap,
		lockEnabled: lockEnabled,
		lockHours:   lockHours,
		now:         time.Now,
	}
}

// StartSession opens a coaching session for the goal. Idempotent: an
// existing active session is returned as-is, so a retried request never
// forks the conversation.
func (o *Orchestrator) StartSession(ctx context.Context, userID, goalID, kind string, trigger Trigger) (*model.CoachingSession, error) {
	goal, err := o.goals.ByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}

	existing, err := o.sessions.ActiveByGoal(goalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, err
	}

	if o.lockEnabled {
		if until := goal.AIContext.NextSessionAllowedAt; until != nil && o.now().Before(*until) {
			return nil, &SessionLockedError{Until: *until}
		}
	}

	systemPrompt, err := o.systemPrompt(goal, kind, trigger)
	if err != nil {
		return nil, err
	}

	raw, err := o.llm.CompleteWithSystem(ctx, systemPrompt, openingInstruction(kind, trigger))
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	env := llm.DecodeReply(raw)
	clean, directives := directive.Parse(env.Message)
	actions := o.exec.Execute(userID, goalID, directives)

	now := o.now()
	session := &model.CoachingSession{
		ID:            uuid.New().String(),
		GoalID:        goalID,
		UserID:        userID,
		Kind:          kind,
		TriggerType:   trigger.Type,
		TriggerReason: trigger.Reason,
		TriggerDetail: trigger.Detail,
		Status:        model.SessionStatusActive,
		Phase:         AdvancePhase(kind, OpeningPhase(kind), env.Phase),
		Messages: model.MessageList{{
			Role:            "assistant",
			Content:         clean,
			Timestamp:       now,
			ExecutedActions: actions,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = o.sessions.Create(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("coaching session started", "session_id", session.ID, "kind", kind, "trigger", trigger.Type)
	return session, nil
}

// SendMessage appends a user turn, gets the coach's reply, and executes any
// directives it carries. When the model call fails, the session is left
// untouched so the user can retry their message.
func (o *Orchestrator) SendMessage(ctx context.Context, userID, sessionID, text string) (*model.CoachingSession, error) {
	session, err := o.sessions.ByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.Status != model.SessionStatusActive {
		return nil, ErrSessionNotActive
	}

	goal, err := o.goals.ByID(session.GoalID)
	if err != nil {
		return nil, err
	}

	trigger := Trigger{Type: session.TriggerType, Reason: session.TriggerReason, Detail: session.TriggerDetail}
	systemPrompt, err := o.systemPrompt(goal, session.Kind, trigger)
	if err != nil {
		return nil, err
	}

	raw, err := o.llm.CompleteWithSystem(ctx, systemPrompt, buildConversationPrompt(session.Messages, text))
	if err != nil {
		return nil, fmt.Errorf("coach reply failed: %w", err)
	}

	env := llm.DecodeReply(raw)
	clean, directives := directive.Parse(env.Message)
	actions := o.exec.Execute(userID, session.GoalID, directives)

	now := o.now()
	session.Messages = append(session.Messages,
		model.ChatMessage{Role: "user", Content: text, Timestamp: now},
		model.ChatMessage{Role: "assistant", Content: clean, Timestamp: now, ExecutedActions: actions},
	)
	if env.Phase != "" && phaseIndex(session.Kind, env.Phase) < 0 {
		slog.Warn("model declared unknown phase, keeping current",
			"session_id", session.ID, "declared", env.Phase, "phase", session.Phase)
	}
	session.Phase = AdvancePhase(session.Kind, session.Phase, env.Phase)
	session.UpdatedAt = now

	err = o.sessions.Update(session)
	if err != nil {
		return nil, err
	}

	if TerminalPhase(session.Kind, session.Phase) {
		return o.resolve(ctx, session)
	}
	return session, nil
}

// ActiveSession returns the goal's current active session, if any.
func (o *Orchestrator) ActiveSession(userID, goalID string) (*model.CoachingSession, error) {
	goal, err := o.goals.ByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	return o.sessions.ActiveByGoal(goalID)
}

// ResolveSession force-closes an active session, for example when the user
// ends the conversation before the coach reaches a terminal phase.
func (o *Orchestrator) ResolveSession(ctx context.Context, userID, sessionID string) (*model.CoachingSession, error) {
	session, err := o.sessions.ByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if session.Status != model.SessionStatusActive {
		return nil, ErrSessionNotActive
	}
	return o.resolve(ctx, session)
}

// resolve generates the session summary, stamps scheduling state on the
// goal, and marks the session resolved. A summary-model failure falls back
// to a mechanical summary rather than blocking resolution.
func (o *Orchestrator) resolve(ctx context.Context, session *model.CoachingSession) (*model.CoachingSession, error) {
	summary := o.summarize(ctx, session)

	now := o.now()
	session.Status = model.SessionStatusResolved
	session.Summary = &summary
	session.ResolvedAt = &now
	session.UpdatedAt = now

	err := o.sessions.Update(session)
	if err != nil {
		return nil, err
	}

	_, err = o.goals.UpdateAIContext(session.GoalID, func(c *model.AIContext) {
		c.LastReviewDate = stats.Day(now)
		c.NextReviewDate = stats.Day(now.AddDate(0, 0, reviewIntervalDays))
		c.CurrentPhase = session.Phase
		if o.lockEnabled {
			until := now.Add(time.Duration(o.lockHours) * time.Hour)
			c.NextSessionAllowedAt = &until
		}
	})
	if err != nil {
		return nil, err
	}

	slog.Info("coaching session resolved", "session_id", session.ID, "kind", session.Kind)
	return session, nil
}

func (o *Orchestrator) summarize(ctx context.Context, session *model.CoachingSession) model.SessionSummary {
	raw, err := o.llm.CompleteWithSystem(ctx, summarySystemPrompt, buildSummaryPrompt(session))
	if err != nil {
		slog.Warn("summary generation failed, using fallback", "session_id", session.ID, "error", err)
		return fallbackSummary(session)
	}

	env := llm.DecodeReply(raw)
	var summary model.SessionSummary
	err = json.Unmarshal([]byte(env.Message), &summary)
	if err != nil || len(summary.KeyPoints) == 0 {
		slog.Warn("summary not decodable, using fallback", "session_id", session.ID)
		return fallbackSummary(session)
	}
	return summary
}

// fallbackSummary builds minutes from the audit trail alone.
func fallbackSummary(session *model.CoachingSession) model.SessionSummary {
	summary := model.SessionSummary{
		KeyPoints: []string{fmt.Sprintf("%s session with %d messages", session.Kind, len(session.Messages))},
	}
	for _, m := range session.Messages {
		for _, a := range m.ExecutedActions {
			if !a.Success {
				continue
			}
			switch a.Type {
			case string(directive.KindHabit):
				var result struct {
					Title string `json:"title"`
				}
				if json.Unmarshal(a.Result, &result) == nil && result.Title != "" {
					summary.HabitsAdded = append(summary.HabitsAdded, result.Title)
				}
			case string(directive.KindUpdateHabit), string(directive.KindDeleteHabit):
				summary.ActionItems = append(summary.ActionItems, fmt.Sprintf("plan adjusted (%s)", a.Type))
			}
		}
	}
	return summary
}

func (o *Orchestrator) systemPrompt(goal *model.Goal, kind string, trigger Trigger) (string, error) {
	memories, err := o.memories.Recent(goal.UserID, promptMemoryLimit)
	if err != nil {
		return "", err
	}

	if kind != model.SessionKindReview {
		return buildInitialSystemPrompt(goal, memories), nil
	}

	snap, err := o.snap.Build(goal)
	if err != nil {
		return "", err
	}

	summaries, err := o.previousSummaries(goal.ID)
	if err != nil {
		return "", err
	}

	return buildReviewSystemPrompt(goal, snap, memories, summaries, trigger), nil
}

// previousSummaries returns up to the last few resolved summaries, oldest
// first.
func (o *Orchestrator) previousSummaries(goalID string) ([]*model.SessionSummary, error) {
	recent, err := o.sessions.RecentResolved(goalID, previousSummaryCount)
	if err != nil {
		return nil, err
	}

	var summaries []*model.SessionSummary
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Summary != nil {
			summaries = append(summaries, recent[i].Summary)
		}
	}
	return summaries, nil
}

func openingInstruction(kind string, trigger Trigger) string {
	if kind == model.SessionKindReview {
		return fmt.Sprintf("Open the review session. It was triggered because: %s. Greet the user and start the conversation.", trigger.Reason)
	}
	return "The user just created this goal. Open their first coaching session: greet them and ask your first question."
}

// CheckTriggers evaluates the goal's recent performance and opens a review
// session when one is due. Returns nil, nil when nothing fired.
func (o *Orchestrator) CheckTriggers(ctx context.Context, userID, goalID string) (*model.CoachingSession, error) {
	goal, err := o.goals.ByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}

	// An active session means triggers wait their turn.
	_, err = o.sessions.ActiveByGoal(goalID)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, err
	}

	snap, err := o.snap.Build(goal)
	if err != nil {
		return nil, err
	}

	trigger, ok := DetectReviewTrigger(snap, o.now())
	if !ok {
		trigger, ok = DetectProactiveTrigger(snap, o.now())
	}
	if !ok {
		return nil, nil
	}

	session, err := o.StartSession(ctx, userID, goalID, model.SessionKindReview, trigger)
	if err != nil {
		return nil, err
	}

	// A formation breakthrough fires once per habit.
	if trigger.Type == TriggerBreakthrough && trigger.Detail != "" {
		err = o.habits.MarkFormationCelebrated(trigger.Detail)
		if err != nil {
			slog.Warn("failed to mark formation celebrated", "habit_id", trigger.Detail, "error", err)
		}
	}

	return session, nil
}
