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
	ErrGoalTitleRequired = errors.New("goal title is required")
	ErrActiveGoalExists  = errors.New("user already has an active goal")
)

type GoalInput struct {
	Title        string
	Description  string
	TargetDate   *string
	MetricName   string
	MetricUnit   string
	InitialValue *float64
	TargetValue  *float64
}

type GoalService struct {
	goals    repository.GoalRepository
	trackers *TrackerService
	habits   repository.HabitRepository
	logs     *DailyLogService
	logRepo  repository.DailyLogRepository
	sessions repository.SessionRepository
	now      func() time.Time
}

func NewGoalService(
	goals repository.GoalRepository,
	trackers *TrackerService,
	habits repository.HabitRepository,
	logs *DailyLogService,
	logRepo repository.DailyLogRepository,
	sessions repository.SessionRepository,
) *GoalService {
	return &GoalService{
		goals:    goals,
		trackers: trackers,
		habits:   habits,
		logs:     logs,
		logRepo:  logRepo,
		sessions: sessions,
		now:      time.Now,
	}
}

// Create starts a goal for the user. One active goal per user is enforced
// here. The goal's primary metric becomes its primary tracker, and the
// initial value, when given, is logged for today as the baseline.
func (s *GoalService) Create(userID string, in GoalInput) (*model.Goal, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrGoalTitleRequired
	}

	existing, err := s.goals.ActiveByUser(userID)
	if err != nil && !errors.Is(err, repository.ErrGoalNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrActiveGoalExists
	}

	direction := model.DirectionIncrease
	if in.InitialValue != nil && in.TargetValue != nil && *in.TargetValue < *in.InitialValue {
		direction = model.DirectionDecrease
	}

	now := s.now()
	goal := &model.Goal{
		ID:                uuid.New().String(),
		UserID:            userID,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Status:            model.GoalStatusActive,
		TargetDate:        in.TargetDate,
		PrimaryMetricName: in.MetricName,
		PrimaryMetricUnit: in.MetricUnit,
		InitialValue:      in.InitialValue,
		TargetValue:       in.TargetValue,
		Direction:         direction,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = s.goals.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	if in.MetricName != "" {
		tracker, err := s.trackers.Create(goal.ID, userID, TrackerInput{
			Name:        in.MetricName,
			Unit:        in.MetricUnit,
			Type:        model.TrackerTypePrimary,
			Direction:   direction,
			TargetValue: in.TargetValue,
		})
		if err != nil {
			// Roll the goal back so a retry starts clean.
			_ = s.goals.Delete(goal.ID)
			return nil, err
		}

		if in.InitialValue != nil {
			_, err = s.logs.LogTracker(userID, goal.ID, stats.Day(now), tracker.ID, *in.InitialValue, "baseline")
			if err != nil {
				return nil, err
			}
		}
	}

	return goal, nil
}

func (s *GoalService) ByID(goalID string) (*model.Goal, error) {
	return s.goals.ByID(goalID)
}

func (s *GoalService) ActiveByUser(userID string) (*model.Goal, error) {
	return s.goals.ActiveByUser(userID)
}

func (s *GoalService) Update(goal *model.Goal) error {
	goal.UpdatedAt = s.now()
	return s.goals.Update(goal)
}

// UpdateAIContext persists coaching state carried on the goal.
func (s *GoalService) UpdateAIContext(goalID string, apply func(*model.AIContext)) (*model.Goal, error) {
	goal, err := s.goals.ByID(goalID)
	if err != nil {
		return nil, err
	}
	apply(&goal.AIContext)
	goal.UpdatedAt = s.now()
	err = s.goals.Update(goal)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes the goal and everything hanging off it. Memories are
// user-scoped and survive.
func (s *GoalService) Delete(goalID string) error {
	err := s.sessions.DeleteByGoal(goalID)
	if err != nil {
		return err
	}
	err = s.logRepo.DeleteByGoal(goalID)
	if err != nil {
		return err
	}
	err = s.habits.DeleteByGoal(goalID)
	if err != nil {
		return err
	}
	err = s.trackers.repo.DeleteByGoal(goalID)
	if err != nil {
		return err
	}
	return s.goals.Delete(goalID)
}
