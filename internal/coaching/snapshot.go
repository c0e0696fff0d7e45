package coaching

import (
	"fmt"
	"strings"
	"time"

	"github.com/kairoshq/kairos/internal/model"
	"github.com/kairoshq/kairos/internal/service"
	"github.com/kairoshq/kairos/internal/stats"
)

// snapshotWindowDays is how far back the performance snapshot looks.
const snapshotWindowDays = 14

// HabitReport is one habit's recent record, computed from logs for display
// and prompt context. Persisted counters stay authoritative for gating.
type HabitReport struct {
	Habit         *model.Habit
	CurrentStreak int
	CompletedDays int
	TrackedDays   int
}

// Snapshot is the recent-performance picture handed to the coach before a
// session.
type Snapshot struct {
	Goal         *model.Goal
	Habits       []HabitReport
	TrackerLines []string
	DaysLogged   int
	LastLogDate  string
}

type Snapshotter struct {
	habits   *service.HabitService
	trackers *service.TrackerService
	logs     *service.DailyLogService
	now      func() time.Time
}

func NewSnapshotter(habits *service.HabitService, trackers *service.TrackerService, logs *service.DailyLogService) *Snapshotter {
	return &Snapshotter{habits: habits, trackers: trackers, logs: logs, now: time.Now}
}

func (s *Snapshotter) Build(goal *model.Goal) (*Snapshot, error) {
	now := s.now()
	logs, err := s.logs.Range(goal.UserID, goal.ID, stats.DaysAgo(now, snapshotWindowDays), stats.Day(now))
	if err != nil {
		return nil, err
	}

	habits, err := s.habits.ByGoal(goal.ID, model.HabitStatusActive)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Goal: goal, DaysLogged: len(logs)}
	if len(logs) > 0 {
		snap.LastLogDate = logs[len(logs)-1].Date
	}

	for _, habit := range habits {
		report := HabitReport{Habit: habit}
		var history []stats.Completion
		for _, log := range logs {
			if c := log.Completion(habit.ID); c != nil {
				report.TrackedDays++
				if c.Completed {
					report.CompletedDays++
				}
				history = append(history, stats.Completion{Date: log.Date, Completed: c.Completed})
			}
		}
		report.CurrentStreak = stats.Compute(history, now).CurrentStreak
		snap.Habits = append(snap.Habits, report)
	}

	trackers, err := s.trackers.ByGoal(goal.ID)
	if err != nil {
		return nil, err
	}
	for _, tracker := range trackers {
		var latest *model.TrackerEntry
		var latestDate string
		for _, log := range logs {
			if e := log.Entry(tracker.ID); e != nil {
				latest = e
				latestDate = log.Date
			}
		}
		if latest == nil {
			continue
		}
		snap.TrackerLines = append(snap.TrackerLines,
			fmt.Sprintf("%s: %g %s (last logged %s)", tracker.Name, latest.Value, tracker.Unit, latestDate))
	}

	return snap, nil
}

// Text renders the snapshot for prompt inclusion.
func (s *Snapshot) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s (status: %s)\n", s.Goal.Title, s.Goal.Status)
	if s.Goal.PrimaryMetricName != "" {
		fmt.Fprintf(&b, "Primary metric: %s", s.Goal.PrimaryMetricName)
		if s.Goal.TargetValue != nil {
			fmt.Fprintf(&b, ", target %g %s", *s.Goal.TargetValue, s.Goal.PrimaryMetricUnit)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Days with logs in the last %d days: %d\n", snapshotWindowDays, s.DaysLogged)

	if len(s.Habits) > 0 {
		b.WriteString("\nActive habits:\n")
		for _, r := range s.Habits {
			formed := ""
			if r.Habit.IsFormed() {
				formed = ", FORMED"
			}
			fmt.Fprintf(&b, "- %s [id=%s]: %d/%d formation days%s, current streak %d, best %d, completed %d of %d tracked days\n",
				r.Habit.Title, r.Habit.ID, r.Habit.FormationCount, model.FormationThreshold, formed,
				r.CurrentStreak, r.Habit.BestStreak, r.CompletedDays, r.TrackedDays)
		}
	}

	if len(s.TrackerLines) > 0 {
		b.WriteString("\nTrackers:\n")
		for _, line := range s.TrackerLines {
			b.WriteString("- " + line + "\n")
		}
	}

	return b.String()
}
