package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/kairoshq/kairos/internal/model"
)

type MemoryRepository interface {
	Create(memory *model.Memory) error
	ByUser(userID string, limit int) ([]*model.Memory, error)
	CountByUser(userID string) (int, error)
	DeleteOldest(userID string) error
}

type memoryRepository struct {
	db *sqlx.DB
}

func NewMemoryRepository(db *sqlx.DB) MemoryRepository {
	return &memoryRepository{db: db}
}

func (r *memoryRepository) Create(memory *model.Memory) error {
	query := `INSERT INTO memories (id, user_id, text, type, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query,
		memory.ID,
		memory.UserID,
		memory.Text,
		memory.Type,
		memory.CreatedAt,
	)

	return err
}

// ByUser returns the most recent memories, newest last.
func (r *memoryRepository) ByUser(userID string, limit int) ([]*model.Memory, error) {
	var memories []*model.Memory
	query := `SELECT * FROM (
	              SELECT * FROM memories WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2
	          ) ORDER BY created_at ASC, id ASC`

	err := r.db.Select(&memories, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return memories, nil
}

func (r *memoryRepository) CountByUser(userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memories WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(&count)
	return count, err
}

// DeleteOldest evicts the single oldest memory for a user (FIFO bound).
func (r *memoryRepository) DeleteOldest(userID string) error {
	query := `DELETE FROM memories WHERE id = (
	              SELECT id FROM memories WHERE user_id = $1 ORDER BY created_at ASC, id ASC LIMIT 1
	          )`
	_, err := r.db.Exec(query, userID)
	return err
}
