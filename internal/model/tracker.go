package model

import (
	"time"
)

const (
	TrackerTypePrimary    = "primary"
	TrackerTypeSupporting = "supporting"
)

type Tracker struct {
	ID          string    `db:"id" json:"id"`
	GoalID      string    `db:"goal_id" json:"goal_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Unit        string    `db:"unit" json:"unit"`
	Type        string    `db:"type" json:"type"`
	Direction   string    `db:"direction" json:"direction"`
	TargetValue *float64  `db:"target_value" json:"target_value"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
