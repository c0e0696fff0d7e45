package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kairoshq/kairos/internal/model"
)

var (
	ErrTrackerNotFound = errors.New("tracker not found")
)

type TrackerRepository interface {
	Create(tracker *model.Tracker) error
	ByID(trackerID string) (*model.Tracker, error)
	ByGoal(goalID string) ([]*model.Tracker, error)
	Update(tracker *model.Tracker) error
	DeleteByGoal(goalID string) error
}

type trackerRepository struct {
	db *sqlx.DB
}

func NewTrackerRepository(db *sqlx.DB) TrackerRepository {
	return &trackerRepository{db: db}
}

func (r *trackerRepository) Create(tracker *model.Tracker) error {
	query := `INSERT INTO trackers (id, goal_id, user_id, name, description, unit, type, direction, target_value, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		tracker.ID,
		tracker.GoalID,
		tracker.UserID,
		tracker.Name,
		tracker.Description,
		tracker.Unit,
		tracker.Type,
		tracker.Direction,
		tracker.TargetValue,
		tracker.CreatedAt,
		tracker.UpdatedAt,
	)

	return err
}

func (r *trackerRepository) ByID(trackerID string) (*model.Tracker, error) {
	tracker := &model.Tracker{}
	query := `SELECT * FROM trackers WHERE id = $1`

	err := r.db.Get(tracker, query, trackerID)
	if err == sql.ErrNoRows {
		return nil, ErrTrackerNotFound
	}

	return tracker, err
}

func (r *trackerRepository) ByGoal(goalID string) ([]*model.Tracker, error) {
	var trackers []*model.Tracker
	query := `SELECT * FROM trackers WHERE goal_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&trackers, query, goalID)
	if err != nil {
		return nil, err
	}

	return trackers, nil
}

func (r *trackerRepository) Update(tracker *model.Tracker) error {
	query := `UPDATE trackers
	          SET name = $1, description = $2, unit = $3, direction = $4, target_value = $5, updated_at = $6
	          WHERE id = $7`

	result, err := r.db.Exec(query,
		tracker.Name,
		tracker.Description,
		tracker.Unit,
		tracker.Direction,
		tracker.TargetValue,
		time.Now(),
		tracker.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTrackerNotFound
	}

	return nil
}

func (r *trackerRepository) DeleteByGoal(goalID string) error {
	_, err := r.db.Exec(`DELETE FROM trackers WHERE goal_id = $1`, goalID)
	return err
}
