package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the canonical day key used across daily logs.
const DateFormat = "2006-01-02"

type HabitCompletion struct {
	HabitID     string     `json:"habit_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type TrackerEntry struct {
	TrackerID string     `json:"tracker_id"`
	Value     float64    `json:"value"`
	LoggedAt  *time.Time `json:"logged_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

type CompletionList []HabitCompletion

func (l CompletionList) Value() (driver.Value, error) {
	if l == nil {
		l = CompletionList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *CompletionList) Scan(src any) error {
	return scanJSON(src, l, "CompletionList")
}

type EntryList []TrackerEntry

func (l EntryList) Value() (driver.Value, error) {
	if l == nil {
		l = EntryList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *EntryList) Scan(src any) error {
	return scanJSON(src, l, "EntryList")
}

func scanJSON(src, dst any, name string) error {
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), dst)
	case []byte:
		return json.Unmarshal(v, dst)
	case nil:
		return nil
	}
	return fmt.Errorf("cannot scan %T into %s", src, name)
}

// DailyLog is the single record for one (user, goal, date). Created lazily on
// first write for a date.
type DailyLog struct {
	ID               string         `db:"id" json:"id"`
	UserID           string         `db:"user_id" json:"user_id"`
	GoalID           string         `db:"goal_id" json:"goal_id"`
	Date             string         `db:"date" json:"date"`
	HabitCompletions CompletionList `db:"habit_completions" json:"habit_completions"`
	TrackerEntries   EntryList      `db:"tracker_entries" json:"tracker_entries"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Completion returns the completion entry for a habit, or nil.
func (d *DailyLog) Completion(habitID string) *HabitCompletion {
	for i := range d.HabitCompletions {
		if d.HabitCompletions[i].HabitID == habitID {
			return &d.HabitCompletions[i]
		}
	}
	return nil
}

// Entry returns the tracker entry for a tracker, or nil.
func (d *DailyLog) Entry(trackerID string) *TrackerEntry {
	for i := range d.TrackerEntries {
		if d.TrackerEntries[i].TrackerID == trackerID {
			return &d.TrackerEntries[i]
		}
	}
	return nil
}
