package progress

import (
	"sort"
	"time"

	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

const DefaultExerciseCountsLimit = 10

// DayPoint is the summed workout duration (minutes) of one calendar day.
type DayPoint struct {
	Date     string `json:"date"`
	Duration int    `json:"duration"`
}

// WorkoutPoint is the number of exercises in one workout.
type WorkoutPoint struct {
	WorkoutID string    `json:"workoutId"`
	Date      time.Time `json:"date"`
	Exercises int       `json:"exercises"`
}

// DurationSeries returns one point per day up to today: since Monday for a week,
// the last 4 weeks for a month and the last 12 weeks for all.
func (e *Engine) DurationSeries(history []workouts.Workout, period Period, now time.Time) []DayPoint {
	today := dayOf(now, e.loc)

	var from day
	switch period {
	case PeriodWeek:
		from = today.weekStart()
	case PeriodMonth:
		from = today.addDays(-4 * 7)
	default:
		from = today.addDays(-12 * 7)
	}

	perDay := make(map[int64]int)
	for _, w := range history {
		perDay[dayOf(w.Date, e.loc).number()] += w.Duration
	}

	points := make([]DayPoint, 0, today.number()-from.number()+1)
	for d := from; d.number() <= today.number(); d = d.addDays(1) {
		points = append(points, DayPoint{
			Date:     d.String(),
			Duration: perDay[d.number()],
		})
	}
	return points
}

// ExerciseCounts returns the last limit workouts, oldest first, with their exercise count.
func ExerciseCounts(history []workouts.Workout, limit int) []WorkoutPoint {
	if limit <= 0 {
		limit = DefaultExerciseCountsLimit
	}

	sorted := newestFirst(history)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	points := make([]WorkoutPoint, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		points = append(points, WorkoutPoint{
			WorkoutID: sorted[i].ID,
			Date:      sorted[i].Date,
			Exercises: len(sorted[i].Exercises),
		})
	}
	return points
}

// newestFirst sorts a copy of the history by date, newest first. Equal dates keep their order.
func newestFirst(history []workouts.Workout) []workouts.Workout {
	sorted := append([]workouts.Workout(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}
