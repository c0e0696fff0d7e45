package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const (
	SessionStatusActive   = "active"
	SessionStatusResolved = "resolved"
)

const (
	SessionKindInitial = "initial"
	SessionKindReview  = "review"
)

// Initial session phases, in order.
const (
	PhaseExploring = "exploring"
	PhaseProposing = "proposing"
	PhaseCreating  = "creating"
	PhaseComplete  = "complete"
)

// Review session stages, in order.
const (
	StageOpening         = "opening"
	StageMidConversation = "mid_conversation"
	StageProposingChange = "proposing_change"
	StageClosing         = "closing"
)

// ExecutedAction is the audit record for one directive extracted from an
// agent message. Every directive, successful or not, produces one.
type ExecutedAction struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type ChatMessage struct {
	Role            string           `json:"role"` // "assistant" | "user"
	Content         string           `json:"content"`
	Timestamp       time.Time        `json:"timestamp"`
	ExecutedActions []ExecutedAction `json:"executed_actions,omitempty"`
}

type MessageList []ChatMessage

func (l MessageList) Value() (driver.Value, error) {
	if l == nil {
		l = MessageList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *MessageList) Scan(src any) error {
	return scanJSON(src, l, "MessageList")
}

// SessionSummary is the "minutes of meeting" generated when a session is
// resolved.
type SessionSummary struct {
	KeyPoints   []string `json:"key_points"`
	HabitsAdded []string `json:"habits_added"`
	NextCheckIn string   `json:"next_check_in,omitempty"`
	ActionItems []string `json:"action_items"`
}

func (s SessionSummary) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *SessionSummary) Scan(src any) error {
	return scanJSON(src, s, "SessionSummary")
}

type CoachingSession struct {
	ID            string          `db:"id" json:"id"`
	GoalID        string          `db:"goal_id" json:"goal_id"`
	UserID        string          `db:"user_id" json:"user_id"`
	Kind          string          `db:"kind" json:"kind"`
	TriggerReason string          `db:"trigger_reason" json:"trigger_reason"`
	TriggerType   string          `db:"trigger_type" json:"trigger_type"`
	TriggerDetail string          `db:"trigger_detail" json:"trigger_detail"`
	Status        string          `db:"status" json:"status"`
	Phase         string          `db:"phase" json:"phase"`
	Messages      MessageList     `db:"messages" json:"messages"`
	Summary       *SessionSummary `db:"summary" json:"summary"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	ResolvedAt    *time.Time      `db:"resolved_at" json:"resolved_at"`
}
