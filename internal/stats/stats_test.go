package stats

import (
	"testing"
	"time"

	"github.com/kairoshq/kairos/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func day(n int) string {
	return today.AddDate(0, 0, -n).Format(model.DateFormat)
}

func TestComputeEmptyHistory(t *testing.T) {
	s := Compute(nil, today)

	assert.Equal(t, 0, s.FormationCount)
	assert.False(t, s.IsFormed)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 0, s.BestStreak)
}

func TestComputeFormation(t *testing.T) {
	var history []Completion
	for i := 1; i <= 8; i++ {
		history = append(history, Completion{Date: day(i), Completed: true})
	}

	s := Compute(history, today)
	assert.Equal(t, 8, s.FormationCount)
	assert.True(t, s.IsFormed)

	s = Compute(history[:7], today)
	assert.Equal(t, 7, s.FormationCount)
	assert.False(t, s.IsFormed)
}

func TestCurrentStreakTodayNotLoggedDoesNotBreak(t *testing.T) {
	history := []Completion{
		{Date: day(1), Completed: true},
		{Date: day(2), Completed: true},
		{Date: day(3), Completed: true},
	}

	s := Compute(history, today)
	assert.Equal(t, 3, s.CurrentStreak)
}

func TestCurrentStreakIncludesToday(t *testing.T) {
	history := []Completion{
		{Date: day(0), Completed: true},
		{Date: day(1), Completed: true},
	}

	s := Compute(history, today)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestCurrentStreakBrokenByMissingDay(t *testing.T) {
	history := []Completion{
		{Date: day(1), Completed: true},
		// day(2) missing
		{Date: day(3), Completed: true},
		{Date: day(4), Completed: true},
	}

	s := Compute(history, today)
	assert.Equal(t, 1, s.CurrentStreak)
}

func TestCurrentStreakBrokenByExplicitIncomplete(t *testing.T) {
	history := []Completion{
		{Date: day(0), Completed: false},
		{Date: day(1), Completed: true},
	}

	s := Compute(history, today)
	assert.Equal(t, 0, s.CurrentStreak)
}

func TestBestStreakLongestRun(t *testing.T) {
	history := []Completion{
		{Date: day(1), Completed: true},
		{Date: day(2), Completed: true},
		// gap at day(3)
		{Date: day(4), Completed: true},
		{Date: day(5), Completed: true},
		{Date: day(6), Completed: true},
	}

	s := Compute(history, today)
	assert.Equal(t, 3, s.BestStreak)
	assert.Equal(t, 2, s.CurrentStreak)
}

func TestApplyCompletionChange(t *testing.T) {
	h := &model.Habit{}

	ApplyCompletionChange(h, false, true)
	ApplyCompletionChange(h, false, true)
	assert.Equal(t, 2, h.FormationCount)

	// Re-log with the same state is a no-op (idempotent cascade).
	ApplyCompletionChange(h, true, true)
	assert.Equal(t, 2, h.FormationCount)

	ApplyCompletionChange(h, true, false)
	assert.Equal(t, 1, h.FormationCount)

	// Never below zero.
	ApplyCompletionChange(h, true, false)
	ApplyCompletionChange(h, true, false)
	assert.Equal(t, 0, h.FormationCount)
}

func TestRaiseBestStreakMonotonic(t *testing.T) {
	h := &model.Habit{BestStreak: 5}

	require.False(t, RaiseBestStreak(h, 3))
	assert.Equal(t, 5, h.BestStreak)

	require.True(t, RaiseBestStreak(h, 7))
	assert.Equal(t, 7, h.BestStreak)

	// A later streak break never lowers it.
	require.False(t, RaiseBestStreak(h, 0))
	assert.Equal(t, 7, h.BestStreak)
}

func TestNextMidnight(t *testing.T) {
	at := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	next := NextMidnight(at)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), next)

	at = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), NextMidnight(at))
}

func TestDateRange(t *testing.T) {
	dates := DateRange("2025-06-13", "2025-06-15")
	assert.Equal(t, []string{"2025-06-13", "2025-06-14", "2025-06-15"}, dates)
}
