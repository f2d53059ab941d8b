// Package progress derives statistics from the workout history: totals and averages
// for a period, workout streaks, chart series and per-exercise records.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

type Stats struct {
	Period          Period `json:"period"`
	TotalWorkouts   int    `json:"totalWorkouts"`
	TotalDuration   int    `json:"totalDuration"`
	AverageDuration int    `json:"averageDuration"`
	CurrentStreak   int    `json:"currentStreak"`
	MaxStreak       int    `json:"maxStreak"`
}

// Engine computes statistics with calendar days taken in one location.
type Engine struct {
	loc *time.Location
}

func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		loc: loc,
	}
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Calculate aggregates the workouts of the period. Streaks always look at the whole history.
func (e *Engine) Calculate(history []workouts.Workout, period Period, now time.Time) Stats {
	filtered := e.Filter(history, period, now)

	stats := Stats{
		Period:        period,
		TotalWorkouts: len(filtered),
	}
	for _, w := range filtered {
		stats.TotalDuration += w.Duration
	}
	if stats.TotalWorkouts > 0 {
		stats.AverageDuration = int(math.Round(float64(stats.TotalDuration) / float64(stats.TotalWorkouts)))
	}
	stats.CurrentStreak, stats.MaxStreak = e.Streaks(history, now)
	return stats
}

// Filter keeps the workouts dated within the current calendar week (Monday to Sunday)
// or month. PeriodAll keeps everything.
func (e *Engine) Filter(history []workouts.Workout, period Period, now time.Time) []workouts.Workout {
	from, to, ok := bounds(period, dayOf(now, e.loc))
	if !ok {
		return append([]workouts.Workout(nil), history...)
	}

	filtered := make([]workouts.Workout, 0, len(history))
	for _, w := range history {
		n := dayOf(w.Date, e.loc).number()
		if n >= from.number() && n <= to.number() {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// Streaks returns the current and the longest run of consecutive workout days.
// Several workouts on the same day count as one day. The current streak is the run
// ending at the most recent workout day, and only if that day is today or yesterday.
func (e *Engine) Streaks(history []workouts.Workout, now time.Time) (current, longest int) {
	if len(history) == 0 {
		return 0, 0
	}

	seen := make(map[int64]bool, len(history))
	days := make([]int64, 0, len(history))
	for _, w := range history {
		n := dayOf(w.Date, e.loc).number()
		if !seen[n] {
			seen[n] = true
			days = append(days, n)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	run := 0
	for i := range days {
		if i > 0 && days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := dayOf(now, e.loc).number()
	if today-days[len(days)-1] <= 1 {
		current = run
	}
	return current, longest
}
