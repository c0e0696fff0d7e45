package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusAbandoned = "abandoned"
)

const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// AIContext carries the coach's working state for a goal. Stored as a JSON
// column so the agent can evolve its shape without schema churn.
type AIContext struct {
	Summary              string     `json:"summary"`
	PlanPhilosophy       string     `json:"plan_philosophy"`
	CurrentPhase         string     `json:"current_phase"`
	NextReviewDate       string     `json:"next_review_date,omitempty"`
	LastReviewDate       string     `json:"last_review_date,omitempty"`
	NextSessionAllowedAt *time.Time `json:"next_session_allowed_at,omitempty"`
}

func (c AIContext) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	return string(b), err
}

func (c *AIContext) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	case nil:
		*c = AIContext{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into AIContext", src)
}

type Goal struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description"`
	PrimaryMetricName string    `db:"primary_metric_name" json:"primary_metric_name"`
	PrimaryMetricUnit string    `db:"primary_metric_unit" json:"primary_metric_unit"`
	InitialValue      *float64  `db:"initial_value" json:"initial_value"`
	TargetValue       *float64  `db:"target_value" json:"target_value"`
	TargetDate        *string   `db:"target_date" json:"target_date"`
	Direction         string    `db:"direction" json:"direction"`
	Status            string    `db:"status" json:"status"`
	AIContext         AIContext `db:"ai_context" json:"ai_context"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
