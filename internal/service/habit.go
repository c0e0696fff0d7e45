package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/stats"
)

var (
	ErrHabitTitleRequired = errors.New("habit title is required")
)

type HabitInput struct {
	Title            string
	Description      string
	Difficulty       string
	Frequency        string
	Reasoning        string
	Position         int
	LinkedTrackerID  *string
	TrackerThreshold *float64
}

type HabitService struct {
	repo repository.HabitRepository
	now  func() time.Time
}

func NewHabitService(repo repository.HabitRepository) *HabitService {
	return &HabitService{repo: repo, now: time.Now}
}

// Create inserts an active habit. Activation is never immediate: the habit
// activates at the start of the next calendar day, so a habit created at 9pm
// cannot be logged for today.
func (s *HabitService) Create(goalID, userID string, in HabitInput) (*model.Habit, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrHabitTitleRequired
	}

	if in.Difficulty == "" {
		in.Difficulty = "easy"
	}
	if in.Frequency == "" {
		in.Frequency = "daily"
	}

	now := s.now()
	activatedAt := stats.NextMidnight(now)
	habit := &model.Habit{
		ID:               uuid.New().String(),
		GoalID:           goalID,
		UserID:           userID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Difficulty:       in.Difficulty,
		Frequency:        in.Frequency,
		Reasoning:        in.Reasoning,
		Status:           model.HabitStatusActive,
		ActivatedAt:      &activatedAt,
		Position:         in.Position,
		LinkedTrackerID:  in.LinkedTrackerID,
		TrackerThreshold: in.TrackerThreshold,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.repo.Create(habit)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return habit, nil
}

func (s *HabitService) ByID(habitID string) (*model.Habit, error) {
	return s.repo.ByID(habitID)
}

func (s *HabitService) ByGoal(goalID, status string) ([]*model.Habit, error) {
	return s.repo.ByGoal(goalID, status)
}

// Update merges the provided fields into the habit. A transition back to
// active recomputes the activation date to the next calendar day.
func (s *HabitService) Update(habitID string, upd model.HabitUpdate) (*model.Habit, error) {
	habit, err := s.repo.ByID(habitID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		habit.Title = *upd.Title
	}
	if upd.Description != nil {
		habit.Description = *upd.Description
	}
	if upd.Difficulty != nil {
		habit.Difficulty = *upd.Difficulty
	}
	if upd.Frequency != nil {
		habit.Frequency = *upd.Frequency
	}
	if upd.Position != nil {
		habit.Position = *upd.Position
	}
	if upd.LinkedTrackerID != nil {
		habit.LinkedTrackerID = upd.LinkedTrackerID
	}
	if upd.TrackerThreshold != nil {
		habit.TrackerThreshold = upd.TrackerThreshold
	}
	if upd.Status != nil && *upd.Status != habit.Status {
		habit.Status = *upd.Status
		if habit.Status == model.HabitStatusActive {
			activatedAt := stats.NextMidnight(s.now())
			habit.ActivatedAt = &activatedAt
		}
	}

	err = s.repo.Update(habit)
	if err != nil {
		return nil, err
	}

	return habit, nil
}

// Archive soft-deletes a habit. The row stays so history and stats survive.
func (s *HabitService) Archive(habitID string) (*model.Habit, error) {
	status := model.HabitStatusArchived
	return s.Update(habitID, model.HabitUpdate{Status: &status})
}

// MarkFormationCelebrated records that the formation breakthrough for this
// habit has been surfaced to the user, so triggers fire once.
func (s *HabitService) MarkFormationCelebrated(habitID string) error {
	habit, err := s.repo.ByID(habitID)
	if err != nil {
		return err
	}
	habit.FormationCelebrated = true
	return s.repo.Update(habit)
}
