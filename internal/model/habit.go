package model

import (
	"time"
)

const (
	HabitStatusActive   = "active"
	HabitStatusPaused   = "paused"
	HabitStatusArchived = "archived"
	HabitStatusSwapped  = "swapped"
)

// FormationThreshold is the completion count after which a habit is
// considered durably adopted.
const FormationThreshold = 8

type Habit struct {
	ID          string     `db:"id" json:"id"`
	GoalID      string     `db:"goal_id" json:"goal_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Difficulty  string     `db:"difficulty" json:"difficulty"`
	Frequency   string     `db:"frequency" json:"frequency"`
	Reasoning   string     `db:"reasoning" json:"reasoning"`
	Status      string     `db:"status" json:"status"`
	ActivatedAt *time.Time `db:"activated_at" json:"activated_at"`
	Position    int        `db:"position" json:"order"`

	// Optional tracker linkage for auto-completion.
	LinkedTrackerID  *string  `db:"linked_tracker_id" json:"linked_tracker_id"`
	TrackerThreshold *float64 `db:"tracker_threshold" json:"tracker_threshold"`

	// Persisted, monotonically-maintained counters. These are the source of
	// truth for formation and best-streak; bounded log windows are only used
	// for display enrichment.
	FormationCount      int  `db:"formation_count" json:"formation_count"`
	BestStreak          int  `db:"best_streak" json:"best_streak"`
	FormationCelebrated bool `db:"formation_celebrated" json:"formation_celebrated"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsFormed reports whether the habit has reached the formation threshold.
func (h *Habit) IsFormed() bool {
	return h.FormationCount >= FormationThreshold
}

// HabitUpdate is a partial field set merged into an existing habit. Nil
// pointers leave the field untouched.
type HabitUpdate struct {
	Title            *string  `json:"title,omitempty"`
	Description      *string  `json:"description,omitempty"`
	Difficulty       *string  `json:"difficulty,omitempty"`
	Frequency        *string  `json:"frequency,omitempty"`
	Status           *string  `json:"status,omitempty"`
	Position         *int     `json:"position,omitempty"`
	LinkedTrackerID  *string  `json:"linked_tracker_id,omitempty"`
	TrackerThreshold *float64 `json:"tracker_threshold,omitempty"`
}
