package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/stats"
)

var (
	ErrHabitNotActivated = errors.New("habit is not yet activated for this date")
	ErrHabitNotActive    = errors.New("habit is not active")
)

// streakWindowDays bounds how much history is loaded when recomputing the
// current streak after a completion change.
const streakWindowDays = 90

type DailyLogService struct {
	logs     repository.DailyLogRepository
	habits   repository.HabitRepository
	trackers *TrackerService
	now      func() time.Time
}

func NewDailyLogService(logs repository.DailyLogRepository, habits repository.HabitRepository, trackers *TrackerService) *DailyLogService {
	return &DailyLogService{
		logs:     logs,
		habits:   habits,
		trackers: trackers,
		now:      time.Now,
	}
}

// GetOrCreate returns the log row for the given date, creating an empty one
// on first touch. Dates use the YYYY-MM-DD form.
func (s *DailyLogService) GetOrCreate(userID, goalID, date string) (*model.DailyLog, error) {
	log, err := s.logs.ByDate(userID, goalID, date)
	if err == nil {
		return log, nil
	}
	if !errors.Is(err, repository.ErrDailyLogNotFound) {
		return nil, err
	}

	now := s.now()
	log = &model.DailyLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		GoalID:    goalID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.logs.Create(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create daily log: %w", err)
	}
	return log, nil
}

func (s *DailyLogService) ByDate(userID, goalID, date string) (*model.DailyLog, error) {
	return s.logs.ByDate(userID, goalID, date)
}

func (s *DailyLogService) Range(userID, goalID, start, end string) ([]*model.DailyLog, error) {
	return s.logs.Range(userID, goalID, start, end)
}

// ToggleHabit flips a habit's completion for the given date. Rejected when
// the habit is inactive or the date precedes its activation day. Counter
// updates flow through the same completion-change path as tracker cascades.
func (s *DailyLogService) ToggleHabit(userID, goalID, date, habitID string) (*model.DailyLog, error) {
	habit, err := s.habits.ByID(habitID)
	if err != nil {
		return nil, err
	}
	if habit.Status != model.HabitStatusActive {
		return nil, ErrHabitNotActive
	}
	if !habitActiveOn(habit, date) {
		return nil, ErrHabitNotActivated
	}

	log, err := s.GetOrCreate(userID, goalID, date)
	if err != nil {
		return nil, err
	}

	was := false
	if c := log.Completion(habitID); c != nil {
		was = c.Completed
	}
	now := !was

	setCompletion(log, habitID, now, s.now())
	log.UpdatedAt = s.now()
	err = s.logs.Update(log)
	if err != nil {
		return nil, err
	}

	err = s.applyCompletionChange(habit, userID, goalID, date, was, now)
	if err != nil {
		return nil, err
	}

	return log, nil
}

// LogTracker upserts a tracker value for the date, then cascades completion
// onto every active habit linked to the tracker. Re-logging the same day
// replaces the entry; habit counters only move when the completion state
// actually flips.
func (s *DailyLogService) LogTracker(userID, goalID, date, trackerID string, value float64, notes string) (*model.DailyLog, error) {
	tracker, err := s.trackers.ByID(trackerID)
	if err != nil {
		return nil, err
	}

	log, err := s.GetOrCreate(userID, goalID, date)
	if err != nil {
		return nil, err
	}

	setEntry(log, tracker.ID, value, notes, s.now())
	log.UpdatedAt = s.now()

	linked, err := s.habits.ByLinkedTracker(goalID, tracker.ID)
	if err != nil {
		return nil, err
	}

	type flip struct {
		habit    *model.Habit
		was, now bool
	}
	var flips []flip
	for _, habit := range linked {
		if !habitActiveOn(habit, date) {
			continue
		}
		was := false
		if c := log.Completion(habit.ID); c != nil {
			was = c.Completed
		}
		now := completionMet(tracker.Direction, habit.TrackerThreshold, value)
		setCompletion(log, habit.ID, now, s.now())
		flips = append(flips, flip{habit: habit, was: was, now: now})
	}

	err = s.logs.Update(log)
	if err != nil {
		return nil, err
	}

	for _, f := range flips {
		err = s.applyCompletionChange(f.habit, userID, goalID, date, f.was, f.now)
		if err != nil {
			return nil, err
		}
	}

	return log, nil
}

// CompletionHistory returns the habit's completion record over the trailing
// window, oldest first, for display stats.
func (s *DailyLogService) CompletionHistory(userID, goalID, habitID string, days int) ([]stats.Completion, error) {
	end := stats.Day(s.now())
	start := stats.DaysAgo(s.now(), days)
	logs, err := s.logs.Range(userID, goalID, start, end)
	if err != nil {
		return nil, err
	}

	var history []stats.Completion
	for _, log := range logs {
		if c := log.Completion(habitID); c != nil {
			history = append(history, stats.Completion{Date: log.Date, Completed: c.Completed})
		}
	}
	return history, nil
}

func (s *DailyLogService) applyCompletionChange(habit *model.Habit, userID, goalID, date string, was, now bool) error {
	if was == now {
		return nil
	}

	stats.ApplyCompletionChange(habit, was, now)

	if now {
		history, err := s.CompletionHistory(userID, goalID, habit.ID, streakWindowDays)
		if err != nil {
			return err
		}
		current := stats.Compute(history, s.now()).CurrentStreak
		stats.RaiseBestStreak(habit, current)
	}

	habit.UpdatedAt = s.now()
	return s.habits.Update(habit)
}

// completionMet applies the tracker's direction to the habit's threshold.
// A habit with no threshold completes on any log.
func completionMet(direction string, threshold *float64, value float64) bool {
	if threshold == nil {
		return true
	}
	if direction == model.DirectionDecrease {
		return value <= *threshold
	}
	return value >= *threshold
}

// habitActiveOn reports whether the date is on or after the habit's
// activation day. A missing activation date means always active.
func habitActiveOn(habit *model.Habit, date string) bool {
	if habit.ActivatedAt == nil {
		return true
	}
	return date >= habit.ActivatedAt.Format(model.DateFormat)
}

func setCompletion(log *model.DailyLog, habitID string, completed bool, at time.Time) {
	var completedAt *time.Time
	if completed {
		completedAt = &at
	}
	for i := range log.HabitCompletions {
		if log.HabitCompletions[i].HabitID == habitID {
			log.HabitCompletions[i].Completed = completed
			log.HabitCompletions[i].CompletedAt = completedAt
			return
		}
	}
	log.HabitCompletions = append(log.HabitCompletions, model.HabitCompletion{
		HabitID:     habitID,
		Completed:   completed,
		CompletedAt: completedAt,
	})
}

func setEntry(log *model.DailyLog, trackerID string, value float64, notes string, at time.Time) {
	for i := range log.TrackerEntries {
		if log.TrackerEntries[i].TrackerID == trackerID {
			log.TrackerEntries[i].Value = value
			log.TrackerEntries[i].Notes = notes
			log.TrackerEntries[i].LoggedAt = &at
			return
		}
	}
	log.TrackerEntries = append(log.TrackerEntries, model.TrackerEntry{
		TrackerID: trackerID,
		Value:     value,
		Notes:     notes,
		LoggedAt:  &at,
	})
}
