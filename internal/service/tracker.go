package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/repository"
)

var (
	ErrTrackerNameRequired = errors.New("tracker name is required")
)

type TrackerInput struct {
	Name        string
	Description string
	Unit        string
	Type        string
	Direction   string
	TargetValue *float64
}

type TrackerService struct {
	repo repository.TrackerRepository
}

func NewTrackerService(repo repository.TrackerRepository) *TrackerService {
	return &TrackerService{repo: repo}
}

func (s *TrackerService) Create(goalID, userID string, in TrackerInput) (*model.Tracker, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrTrackerNameRequired
	}

	if in.Type == "" {
		in.Type = model.TrackerTypeSupporting
	}
	if in.Direction == "" {
		in.Direction = model.DirectionIncrease
	}

	now := time.Now()
	tracker := &model.Tracker{
		ID:          uuid.New().String(),
		GoalID:      goalID,
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Unit:        in.Unit,
		Type:        in.Type,
		Direction:   in.Direction,
		TargetValue: in.TargetValue,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.Create(tracker)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracker: %w", err)
	}

	return tracker, nil
}

func (s *TrackerService) ByID(trackerID string) (*model.Tracker, error) {
	return s.repo.ByID(trackerID)
}

func (s *TrackerService) ByGoal(goalID string) ([]*model.Tracker, error) {
	return s.repo.ByGoal(goalID)
}

// Resolve finds a tracker under a goal by exact case-insensitive name match,
// falling back to id. Agents reference trackers by either form.
func (s *TrackerService) Resolve(goalID, ref string) (*model.Tracker, error) {
	trackers, err := s.repo.ByGoal(goalID)
	if err != nil {
		return nil, err
	}

	for _, t := range trackers {
		if strings.EqualFold(t.Name, ref) {
			return t, nil
		}
	}
	for _, t := range trackers {
		if t.ID == ref {
			return t, nil
		}
	}

	return nil, repository.ErrTrackerNotFound
}
