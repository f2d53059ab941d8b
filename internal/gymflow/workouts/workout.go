package workouts

import (
	"time"
)

const DefaultWorkoutName = "My Workout"

type Set struct {
	ID        string  `json:"id"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
	// RestTime in seconds
	RestTime int `json:"restTime"`
}

type WorkoutExercise struct {
	ID         string `json:"id"`
	ExerciseID string `json:"exerciseId"`
	Sets       []Set  `json:"sets"`
	Notes      string `json:"notes,omitempty"`
}

// LastCompletedSet returns the last set with completed=true, or nil.
func (we WorkoutExercise) LastCompletedSet() *Set {
	for i := len(we.Sets) - 1; i >= 0; i-- {
		if we.Sets[i].Completed {
			s := we.Sets[i]
			return &s
		}
	}
	return nil
}

type Workout struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Date      time.Time         `json:"date"`
	Exercises []WorkoutExercise `json:"exercises"`
	// Duration in minutes, set on completion
	Duration  int  `json:"duration"`
	Completed bool `json:"completed"`
}

// Clone returns a deep copy, so the copy can be changed without touching w.
func (w *Workout) Clone() *Workout {
	if w == nil {
		return nil
	}
	c := *w
	c.Exercises = make([]WorkoutExercise, len(w.Exercises))
	for i, we := range w.Exercises {
		c.Exercises[i] = we
		c.Exercises[i].Sets = append([]Set(nil), we.Sets...)
		if c.Exercises[i].Sets == nil {
			c.Exercises[i].Sets = []Set{}
		}
	}
	return &c
}

// ExerciseIndex returns the position of the exercise with the given id, or -1.
func (w *Workout) ExerciseIndex(exerciseID string) int {
	for i := range w.Exercises {
		if w.Exercises[i].ID == exerciseID {
			return i
		}
	}
	return -1
}

// FindExercise looks up a workout exercise by the referenced catalog exercise id.
func (w *Workout) FindExercise(catalogExerciseID string) *WorkoutExercise {
	for i := range w.Exercises {
		if w.Exercises[i].ExerciseID == catalogExerciseID {
			return &w.Exercises[i]
		}
	}
	return nil
}

func (w *Workout) TotalSets() int {
	total := 0
	for _, we := range w.Exercises {
		total += len(we.Sets)
	}
	return total
}

// CloneAll deep copies a workout list.
func CloneAll(list []Workout) []Workout {
	out := make([]Workout, len(list))
	for i := range list {
		out[i] = *list[i].Clone()
	}
	return out
}

// DeleteResponse is returned by delete endpoints of both workouts and routines.
type DeleteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
