// Package stats derives habit statistics from completion history and owns
// the update rules for the persisted formation/streak counters.
//
// The persisted counters on a habit (formation_count, best_streak) are the
// source of truth: they are adjusted at completion time and never recomputed
// from a bounded log window. Compute is a pure function used for display
// enrichment and for deriving the current streak from recent history.
package stats

import (
	"sort"
	"time"

	"github.com/kairoshq/kairos/internal/model"
)

// Completion is one day's completion state for a habit.
type Completion struct {
	Date      string
	Completed bool
}

type HabitStats struct {
	FormationCount int
	IsFormed       bool
	CurrentStreak  int
	BestStreak     int
}

// Compute derives stats from an ordered or unordered completion history.
// The current streak walks backward from today; a day with no record breaks
// it, except today itself, which is simply excluded until logged.
func Compute(history []Completion, today time.Time) HabitStats {
	byDate := make(map[string]bool, len(history))
	for _, c := range history {
		byDate[c.Date] = c.Completed
	}

	formation := 0
	for _, completed := range byDate {
		if completed {
			formation++
		}
	}

	s := HabitStats{
		FormationCount: formation,
		IsFormed:       formation >= model.FormationThreshold,
		CurrentStreak:  currentStreak(byDate, today),
		BestStreak:     bestStreak(byDate),
	}
	return s
}

func currentStreak(byDate map[string]bool, today time.Time) int {
	streak := 0
	for i := 0; ; i++ {
		date := today.AddDate(0, 0, -i).Format(model.DateFormat)
		completed, ok := byDate[date]
		if !ok {
			if i == 0 {
				continue // today not yet logged
			}
			break
		}
		if !completed {
			break
		}
		streak++
	}
	return streak
}

// bestStreak finds the longest consecutive completed run in the history.
// Display-only: the persisted habit counter is the canonical best streak.
func bestStreak(byDate map[string]bool) int {
	dates := make([]string, 0, len(byDate))
	for d, completed := range byDate {
		if completed {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	best, run := 0, 0
	var prev time.Time
	for i, d := range dates {
		t, err := time.Parse(model.DateFormat, d)
		if err != nil {
			continue
		}
		if i > 0 && t.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = t
	}
	return best
}

// ApplyCompletionChange adjusts the persisted formation counter when a
// habit's completion flips for a day. A re-log with the same state is a
// no-op, keeping the cascade idempotent.
func ApplyCompletionChange(h *model.Habit, was, now bool) {
	switch {
	case !was && now:
		h.FormationCount++
	case was && !now:
		if h.FormationCount > 0 {
			h.FormationCount--
		}
	}
}

// RaiseBestStreak lifts the persisted best streak when the current streak
// exceeds it. The counter is monotonic: it never decreases, even after a
// streak break.
func RaiseBestStreak(h *model.Habit, currentStreak int) bool {
	if currentStreak > h.BestStreak {
		h.BestStreak = currentStreak
		return true
	}
	return false
}
