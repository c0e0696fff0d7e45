package stats

import (
	"time"

	"github.com/kairoshq/kairos/internal/model"
)

// Day formats a time as the canonical day key.
func Day(t time.Time) string {
	return t.Format(model.DateFormat)
}

// DaysAgo returns the day key n days before t.
func DaysAgo(t time.Time, n int) string {
	return t.AddDate(0, 0, -n).Format(model.DateFormat)
}

// DateRange returns every day key from start to end inclusive.
func DateRange(start, end string) []string {
	s, err := time.Parse(model.DateFormat, start)
	if err != nil {
		return nil
	}
	e, err := time.Parse(model.DateFormat, end)
	if err != nil {
		return nil
	}

	var dates []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(model.DateFormat))
	}
	return dates
}

// NextMidnight returns the start of the next calendar day after t. New and
// reactivated habits activate then, never immediately.
func NextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
