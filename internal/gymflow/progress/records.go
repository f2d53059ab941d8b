package progress

import (
	"sort"
	"time"

	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

// Previous is how an exercise went the last time it was done.
type Previous struct {
	ExerciseID  string         `json:"exerciseId"`
	WorkoutID   string         `json:"workoutId"`
	WorkoutName string         `json:"workoutName"`
	Date        time.Time      `json:"date"`
	Sets        []workouts.Set `json:"sets"`
	LastSet     *workouts.Set  `json:"lastSet,omitempty"`
}

type PersonalBest struct {
	ExerciseID string    `json:"exerciseId"`
	Weight     float64   `json:"weight"`
	Reps       int       `json:"reps"`
	Date       time.Time `json:"date"`
}

// PreviousPerformance finds the most recent workout containing the catalog exercise.
// Returns nil if the exercise was never done.
func PreviousPerformance(history []workouts.Workout, exerciseID string) *Previous {
	for _, w := range newestFirst(history) {
		we := w.FindExercise(exerciseID)
		if we == nil {
			continue
		}
		return &Previous{
			ExerciseID:  exerciseID,
			WorkoutID:   w.ID,
			WorkoutName: w.Name,
			Date:        w.Date,
			Sets:        append([]workouts.Set{}, we.Sets...),
			LastSet:     we.LastCompletedSet(),
		}
	}
	return nil
}

// PersonalBests returns the heaviest completed set of every exercise, ordered by exercise id.
// Ties go to more reps, then to the earlier date.
func PersonalBests(history []workouts.Workout) []PersonalBest {
	best := make(map[string]PersonalBest)
	for _, w := range history {
		for _, we := range w.Exercises {
			for _, s := range we.Sets {
				if !s.Completed {
					continue
				}
				candidate := PersonalBest{
					ExerciseID: we.ExerciseID,
					Weight:     s.Weight,
					Reps:       s.Reps,
					Date:       w.Date,
				}
				current, ok := best[we.ExerciseID]
				if !ok || better(candidate, current) {
					best[we.ExerciseID] = candidate
				}
			}
		}
	}

	list := make([]PersonalBest, 0, len(best))
	for _, pb := range best {
		list = append(list, pb)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ExerciseID < list[j].ExerciseID
	})
	return list
}

func better(a, b PersonalBest) bool {
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	if a.Reps != b.Reps {
		return a.Reps > b.Reps
	}
	return a.Date.Before(b.Date)
}
