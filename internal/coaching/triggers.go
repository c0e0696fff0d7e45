package coaching

import (
	"fmt"
	"time"

	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/stats"
)

// Trigger explains why a session is being opened. The reason text feeds the
// coach's opening prompt.
type Trigger struct {
	Type   string
	Reason string
	Detail string
}

const (
	TriggerScheduled           = "scheduled"
	TriggerStreakBroken        = "streak_broken"
	TriggerConsistentlyMissing = "consistently_missing"
	TriggerBreakthrough        = "breakthrough"
	TriggerMissedDays          = "missed_3_plus_days"
	TriggerUserRequested       = "user_requested"
)

// consecutiveMissThreshold marks a habit as consistently missing.
const consecutiveMissThreshold = 3

// DetectReviewTrigger inspects recent performance and decides whether a
// review session is due. Breakthroughs outrank problems: a formed habit is
// worth a session before a slipping one.
func DetectReviewTrigger(snap *Snapshot, now time.Time) (Trigger, bool) {
	for _, r := range snap.Habits {
		if r.Habit.IsFormed() && !r.Habit.FormationCelebrated {
			return Trigger{
				Type:   TriggerBreakthrough,
				Reason: fmt.Sprintf("habit %q reached %d formation days", r.Habit.Title, r.Habit.FormationCount),
				Detail: r.Habit.ID,
			}, true
		}
	}

	for _, r := range snap.Habits {
		if r.Habit.BestStreak >= consecutiveMissThreshold && r.CurrentStreak == 0 && r.TrackedDays > 0 {
			return Trigger{
				Type:   TriggerStreakBroken,
				Reason: fmt.Sprintf("habit %q streak broke after reaching %d days", r.Habit.Title, r.Habit.BestStreak),
				Detail: r.Habit.ID,
			}, true
		}
	}

	for _, r := range snap.Habits {
		missed := r.TrackedDays - r.CompletedDays
		if r.TrackedDays >= consecutiveMissThreshold && missed >= consecutiveMissThreshold && r.CurrentStreak == 0 {
			return Trigger{
				Type:   TriggerConsistentlyMissing,
				Reason: fmt.Sprintf("habit %q missed %d of the last %d tracked days", r.Habit.Title, missed, r.TrackedDays),
				Detail: r.Habit.ID,
			}, true
		}
	}

	if due := snap.Goal.AIContext.NextReviewDate; due != "" && due <= stats.Day(now) {
		return Trigger{
			Type:   TriggerScheduled,
			Reason: fmt.Sprintf("scheduled review due %s", due),
		}, true
	}

	return Trigger{}, false
}

// DetectProactiveTrigger looks for silence: the user has stopped logging
// entirely.
func DetectProactiveTrigger(snap *Snapshot, now time.Time) (Trigger, bool) {
	if len(snap.Habits) == 0 {
		return Trigger{}, false
	}
	if snap.LastLogDate == "" {
		return Trigger{}, false
	}

	last, err := time.Parse(model.DateFormat, snap.LastLogDate)
	if err != nil {
		return Trigger{}, false
	}
	gap := int(now.Sub(last).Hours() / 24)
	if gap >= consecutiveMissThreshold {
		return Trigger{
			Type:   TriggerMissedDays,
			Reason: fmt.Sprintf("no logs for %d days (last on %s)", gap, snap.LastLogDate),
		}, true
	}

	return Trigger{}, false
}
