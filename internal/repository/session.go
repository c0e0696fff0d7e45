package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kairoshq/kairos/internal/model"
)

var (
	ErrSessionNotFound = errors.New("coaching session not found")
)

type SessionRepository interface {
	Create(session *model.CoachingSession) error
	ByID(sessionID string) (*model.CoachingSession, error)
	ActiveByGoal(goalID string) (*model.CoachingSession, error)
	RecentResolved(goalID string, limit int) ([]*model.CoachingSession, error)
	Update(session *model.CoachingSession) error
	DeleteByGoal(goalID string) error
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.CoachingSession) error {
	query := `INSERT INTO coaching_sessions (id, goal_id, user_id, kind, trigger_reason, trigger_type, trigger_detail,
	          status, phase, messages, summary, created_at, updated_at, resolved_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(query,
		session.ID,
		session.GoalID,
		session.UserID,
		session.Kind,
		session.TriggerReason,
		session.TriggerType,
		session.TriggerDetail,
		session.Status,
		session.Phase,
		session.Messages,
		session.Summary,
		session.CreatedAt,
		session.UpdatedAt,
		session.ResolvedAt,
	)

	return err
}

func (r *sessionRepository) ByID(sessionID string) (*model.CoachingSession, error) {
	session := &model.CoachingSession{}
	query := `SELECT * FROM coaching_sessions WHERE id = $1`

	err := r.db.Get(session, query, sessionID)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}

	return session, err
}

func (r *sessionRepository) ActiveByGoal(goalID string) (*model.CoachingSession, error) {
	session := &model.CoachingSession{}
	query := `SELECT * FROM coaching_sessions WHERE goal_id = $1 AND status = $2`

	err := r.db.Get(session, query, goalID, model.SessionStatusActive)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}

	return session, err
}

func (r *sessionRepository) RecentResolved(goalID string, limit int) ([]*model.CoachingSession, error) {
	var sessions []*model.CoachingSession
	query := `SELECT * FROM coaching_sessions
	          WHERE goal_id = $1 AND status = $2
	          ORDER BY resolved_at DESC LIMIT $3`

	err := r.db.Select(&sessions, query, goalID, model.SessionStatusResolved, limit)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepository) Update(session *model.CoachingSession) error {
	query := `UPDATE coaching_sessions
	          SET status = $1, phase = $2, messages = $3, summary = $4, updated_at = $5, resolved_at = $6
	          WHERE id = $7`

	result, err := r.db.Exec(query,
		session.Status,
		session.Phase,
		session.Messages,
		session.Summary,
		time.Now(),
		session.ResolvedAt,
		session.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) DeleteByGoal(goalID string) error {
	_, err := r.db.Exec(`DELETE FROM coaching_sessions WHERE goal_id = $1`, goalID)
	return err
}
