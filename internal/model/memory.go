package model

import (
	"time"
)

const (
	MemoryTypePreference = "preference"
	MemoryTypeSchedule   = "schedule"
	MemoryTypeMotivation = "motivation"
	MemoryTypeChallenge  = "challenge"
	MemoryTypeGeneral    = "general"
)

// Memory is a short fact the coach has learned about the user. The set per
// user is bounded; the oldest entry is evicted on overflow.
type Memory struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ValidMemoryType reports whether t is a known memory type tag.
func ValidMemoryType(t string) bool {
	switch t {
	case MemoryTypePreference, MemoryTypeSchedule, MemoryTypeMotivation,
		MemoryTypeChallenge, MemoryTypeGeneral:
		return true
	}
	return false
}
