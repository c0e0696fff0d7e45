package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kairoshq/kairos/internal/model"
)

var (
	ErrDailyLogNotFound = errors.New("daily log not found")
)

type DailyLogRepository interface {
	Create(log *model.DailyLog) error
	ByDate(userID, goalID, date string) (*model.DailyLog, error)
	Range(userID, goalID, startDate, endDate string) ([]*model.DailyLog, error)
	Update(log *model.DailyLog) error
	DeleteByGoal(goalID string) error
}

type dailyLogRepository struct {
	db *sqlx.DB
}

func NewDailyLogRepository(db *sqlx.DB) DailyLogRepository {
	return &dailyLogRepository{db: db}
}

func (r *dailyLogRepository) Create(log *model.DailyLog) error {
	query := `INSERT INTO daily_logs (id, user_id, goal_id, date, habit_completions, tracker_entries, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		log.ID,
		log.UserID,
		log.GoalID,
		log.Date,
		log.HabitCompletions,
		log.TrackerEntries,
		log.CreatedAt,
		log.UpdatedAt,
	)

	return err
}

func (r *dailyLogRepository) ByDate(userID, goalID, date string) (*model.DailyLog, error) {
	log := &model.DailyLog{}
	query := `SELECT * FROM daily_logs WHERE user_id = $1 AND goal_id = $2 AND date = $3`

	err := r.db.Get(log, query, userID, goalID, date)
	if err == sql.ErrNoRows {
		return nil, ErrDailyLogNotFound
	}

	return log, err
}

// Range returns logs for [startDate, endDate] inclusive, ordered by date ascending.
func (r *dailyLogRepository) Range(userID, goalID, startDate, endDate string) ([]*model.DailyLog, error) {
	var logs []*model.DailyLog
	query := `SELECT * FROM daily_logs
	          WHERE user_id = $1 AND goal_id = $2 AND date >= $3 AND date <= $4
	          ORDER BY date ASC`

	err := r.db.Select(&logs, query, userID, goalID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *dailyLogRepository) Update(log *model.DailyLog) error {
	query := `UPDATE daily_logs
	          SET habit_completions = $1, tracker_entries = $2, updated_at = $3
	          WHERE id = $4`

	result, err := r.db.Exec(query,
		log.HabitCompletions,
		log.TrackerEntries,
		time.Now(),
		log.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrDailyLogNotFound
	}

	return nil
}

func (r *dailyLogRepository) DeleteByGoal(goalID string) error {
	_, err := r.db.Exec(`DELETE FROM daily_logs WHERE goal_id = $1`, goalID)
	return err
}
