package coaching

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kairoshq/kairos/internal/directive"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
	"github.com/kairoshq/kairos/internal/stats"
)

// Executor applies parsed directives against the user's data. Every
// directive yields an audit record; failures never abort the batch, so one
// bad block cannot swallow the rest of an agent message.
type Executor struct {
	habits   *service.HabitService
	trackers *service.TrackerService
	logs     *service.DailyLogService
	memories *service.MemoryService
	now      func() time.Time
}

func NewExecutor(
	habits *service.HabitService,
	trackers *service.TrackerService,
	logs *service.DailyLogService,
	memories *service.MemoryService,
) *Executor {
	return &Executor{
		habits:   habits,
		trackers: trackers,
		logs:     logs,
		memories: memories,
		now:      time.Now,
	}
}

// Execute runs directives in order. State changes made by earlier directives
// are visible to later ones: a tracker created by directive N resolves by
// name in directive N+1.
func (e *Executor) Execute(userID, goalID string, directives []directive.Directive) []model.ExecutedAction {
	actions := make([]model.ExecutedAction, 0, len(directives))
	for _, d := range directives {
		actions = append(actions, e.executeOne(userID, goalID, d))
	}
	return actions
}

func (e *Executor) executeOne(userID, goalID string, d directive.Directive) model.ExecutedAction {
	action := model.ExecutedAction{Type: string(d.Kind)}

	if d.Err != nil {
		action.Data = json.RawMessage(quoteJSON(d.Raw))
		action.Error = d.Err.Error()
		return action
	}

	data, _ := json.Marshal(d.Payload)
	action.Data = data

	var result any
	var err error
	switch p := d.Payload.(type) {
	case *directive.HabitPayload:
		result, err = e.createHabit(userID, goalID, p)
	case *directive.TrackerPayload:
		result, err = e.createTracker(userID, goalID, p)
	case *directive.LogPayload:
		result, err = e.logTracker(userID, goalID, p)
	case *directive.MemoryPayload:
		result, err = e.addMemory(userID, p)
	case *directive.DeleteHabitPayload:
		result, err = e.deleteHabit(goalID, p)
	case *directive.UpdateHabitPayload:
		result, err = e.updateHabit(goalID, p)
	default:
		err = fmt.Errorf("unsupported directive kind %s", d.Kind)
	}

	if err != nil {
		action.Error = err.Error()
		return action
	}

	action.Success = true
	if result != nil {
		action.Result, _ = json.Marshal(result)
	}
	return action
}

// createHabit enforces the sequential-formation rule: no new habit while any
// active habit is still unformed. The check runs against fresh state, so two
// HABIT blocks in one message cannot both pass once the first lands.
func (e *Executor) createHabit(userID, goalID string, p *directive.HabitPayload) (any, error) {
	active, err := e.habits.ByGoal(goalID, model.HabitStatusActive)
	if err != nil {
		return nil, err
	}
	for _, h := range active {
		if !h.IsFormed() {
			return nil, fmt.Errorf("habit %q is not formed yet (%d/%d days); form it before adding another",
				h.Title, h.FormationCount, model.FormationThreshold)
		}
	}

	in := service.HabitInput{
		Title:       p.Title,
		Description: p.Description,
		Difficulty:  p.Difficulty,
		Frequency:   p.Frequency,
		Reasoning:   p.Reasoning,
		Position:    p.Position,
	}
	if p.LinkedTrackerRef != "" {
		tracker, err := e.trackers.Resolve(goalID, p.LinkedTrackerRef)
		if err != nil {
			return nil, fmt.Errorf("linked tracker %q not found", p.LinkedTrackerRef)
		}
		in.LinkedTrackerID = &tracker.ID
		if p.TrackerThreshold != nil {
			threshold := p.TrackerThreshold.Float()
			in.TrackerThreshold = &threshold
		}
	}

	habit, err := e.habits.Create(goalID, userID, in)
	if err != nil {
		return nil, err
	}
	return map[string]string{"habit_id": habit.ID, "title": habit.Title}, nil
}

func (e *Executor) createTracker(userID, goalID string, p *directive.TrackerPayload) (any, error) {
	in := service.TrackerInput{
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		Type:        p.Type,
		Direction:   p.Direction,
	}
	if p.TargetValue != nil {
		target := p.TargetValue.Float()
		in.TargetValue = &target
	}

	tracker, err := e.trackers.Create(goalID, userID, in)
	if err != nil {
		return nil, err
	}
	return map[string]string{"tracker_id": tracker.ID, "name": tracker.Name}, nil
}

func (e *Executor) logTracker(userID, goalID string, p *directive.LogPayload) (any, error) {
	if strings.TrimSpace(p.Key) == "" {
		return nil, errors.New("log key is required")
	}

	tracker, err := e.trackers.Resolve(goalID, p.Key)
	if err != nil {
		if errors.Is(err, repository.ErrTrackerNotFound) {
			return nil, fmt.Errorf("tracker %q not found", p.Key)
		}
		return nil, err
	}

	log, err := e.logs.LogTracker(userID, goalID, stats.Day(e.now()), tracker.ID, p.Value.Float(), p.Notes)
	if err != nil {
		return nil, err
	}
	return map[string]string{"log_id": log.ID, "tracker_id": tracker.ID, "date": log.Date}, nil
}

func (e *Executor) addMemory(userID string, p *directive.MemoryPayload) (any, error) {
	memory, err := e.memories.Add(userID, p.Text, p.Type)
	if err != nil {
		return nil, err
	}
	return map[string]string{"memory_id": memory.ID}, nil
}

// deleteHabit archives rather than removes, keeping history intact.
func (e *Executor) deleteHabit(goalID string, p *directive.DeleteHabitPayload) (any, error) {
	habit, err := e.mustOwnHabit(goalID, p.HabitID)
	if err != nil {
		return nil, err
	}
	_, err = e.habits.Archive(habit.ID)
	if err != nil {
		return nil, err
	}
	return map[string]string{"habit_id": habit.ID, "status": model.HabitStatusArchived}, nil
}

func (e *Executor) updateHabit(goalID string, p *directive.UpdateHabitPayload) (any, error) {
	habit, err := e.mustOwnHabit(goalID, p.HabitID)
	if err != nil {
		return nil, err
	}
	updated, err := e.habits.Update(habit.ID, p.HabitUpdate)
	if err != nil {
		return nil, err
	}
	return map[string]string{"habit_id": updated.ID, "status": updated.Status}, nil
}

// mustOwnHabit guards against a directive referencing a habit from another
// goal.
func (e *Executor) mustOwnHabit(goalID, habitID string) (*model.Habit, error) {
	if strings.TrimSpace(habitID) == "" {
		return nil, errors.New("habit_id is required")
	}
	habit, err := e.habits.ByID(habitID)
	if err != nil {
		if errors.Is(err, repository.ErrHabitNotFound) {
			return nil, fmt.Errorf("habit %q not found", habitID)
		}
		return nil, err
	}
	if habit.GoalID != goalID {
		return nil, fmt.Errorf("habit %q does not belong to this goal", habitID)
	}
	return habit, nil
}

func quoteJSON(raw string) string {
	b, _ := json.Marshal(raw)
	return string(b)
}
