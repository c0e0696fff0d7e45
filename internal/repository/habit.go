package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kairoshq/kairos/internal/model"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	Create(habit *model.Habit) error
	ByID(habitID string) (*model.Habit, error)
	ByGoal(goalID, status string) ([]*model.Habit, error)
	ByLinkedTracker(goalID, trackerID string) ([]*model.Habit, error)
	Update(habit *model.Habit) error
	DeleteByGoal(goalID string) error
}

type habitRepository struct {
	db *sqlx.DB
}

func NewHabitRepository(db *sqlx.DB) HabitRepository {
	return &habitRepository{db: db}
}

func (r *habitRepository) Create(habit *model.Habit) error {
	query := `INSERT INTO habits (id, goal_id, user_id, title, description, difficulty, frequency, reasoning,
	          status, activated_at, position, linked_tracker_id, tracker_threshold,
	          formation_count, best_streak, formation_celebrated, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.Exec(query,
		habit.ID,
		habit.GoalID,
		habit.UserID,
		habit.Title,
		habit.Description,
		habit.Difficulty,
		habit.Frequency,
		habit.Reasoning,
		habit.Status,
		habit.ActivatedAt,
		habit.Position,
		habit.LinkedTrackerID,
		habit.TrackerThreshold,
		habit.FormationCount,
		habit.BestStreak,
		habit.FormationCelebrated,
		habit.CreatedAt,
		habit.UpdatedAt,
	)

	return err
}

func (r *habitRepository) ByID(habitID string) (*model.Habit, error) {
	habit := &model.Habit{}
	query := `SELECT * FROM habits WHERE id = $1`

	err := r.db.Get(habit, query, habitID)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	}

	return habit, err
}

func (r *habitRepository) ByGoal(goalID, status string) ([]*model.Habit, error) {
	var habits []*model.Habit

	if status == "" {
		query := `SELECT * FROM habits WHERE goal_id = $1 ORDER BY position ASC, created_at ASC`
		err := r.db.Select(&habits, query, goalID)
		return habits, err
	}

	query := `SELECT * FROM habits WHERE goal_id = $1 AND status = $2 ORDER BY position ASC, created_at ASC`
	err := r.db.Select(&habits, query, goalID, status)
	return habits, err
}

func (r *habitRepository) ByLinkedTracker(goalID, trackerID string) ([]*model.Habit, error) {
	var habits []*model.Habit
	query := `SELECT * FROM habits
	          WHERE goal_id = $1 AND linked_tracker_id = $2 AND status = $3
	          ORDER BY position ASC`

	err := r.db.Select(&habits, query, goalID, trackerID, model.HabitStatusActive)
	return habits, err
}

func (r *habitRepository) Update(habit *model.Habit) error {
	query := `UPDATE habits
	          SET title = $1, description = $2, difficulty = $3, frequency = $4, reasoning = $5,
	              status = $6, activated_at = $7, position = $8, linked_tracker_id = $9,
	              tracker_threshold = $10, formation_count = $11, best_streak = $12,
	              formation_celebrated = $13, updated_at = $14
	          WHERE id = $15`

	result, err := r.db.Exec(query,
		habit.Title,
		habit.Description,
		habit.Difficulty,
		habit.Frequency,
		habit.Reasoning,
		habit.Status,
		habit.ActivatedAt,
		habit.Position,
		habit.LinkedTrackerID,
		habit.TrackerThreshold,
		habit.FormationCount,
		habit.BestStreak,
		habit.FormationCelebrated,
		time.Now(),
		habit.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrHabitNotFound
	}

	return nil
}

func (r *habitRepository) DeleteByGoal(goalID string) error {
	_, err := r.db.Exec(`DELETE FROM habits WHERE goal_id = $1`, goalID)
	return err
}
