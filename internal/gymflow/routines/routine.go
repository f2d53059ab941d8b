package routines

import (
	"time"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// RoutineExercise is a planned exercise: sets and reps are counts, not logged sets.
type RoutineExercise struct {
	ExerciseID string `json:"exerciseId"`
	Name       string `json:"name"`
	Sets       int    `json:"sets"`
	Reps       int    `json:"reps"`
	RestTime   int    `json:"restTime"`
	Notes      string `json:"notes,omitempty"`
}

type WorkoutRoutine struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`
	// EstimatedDuration in minutes
	EstimatedDuration  int               `json:"estimatedDuration"`
	TargetMuscleGroups []string          `json:"targetMuscleGroups"`
	Exercises          []RoutineExercise `json:"exercises"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
	IsCustom           bool              `json:"isCustom"`
}

// TotalSets is the number of sets a workout started from this routine will have.
func (r WorkoutRoutine) TotalSets() int {
	total := 0
	for _, re := range r.Exercises {
		if re.Sets > 0 {
			total += re.Sets
		}
	}
	return total
}

const (
	FilterAll    = "all"
	FilterCustom = "custom"
)

// Filter keeps the routines matching filter: "all" (or empty), "custom",
// or otherwise a category name.
func Filter(list []WorkoutRoutine, filter string) []WorkoutRoutine {
	filtered := make([]WorkoutRoutine, 0, len(list))
	for _, r := range list {
		switch filter {
		case "", FilterAll:
		case FilterCustom:
			if !r.IsCustom {
				continue
			}
		default:
			if r.Category != filter {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// Categories returns the distinct categories, in order of first appearance.
func Categories(list []WorkoutRoutine) []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, r := range list {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		categories = append(categories, r.Category)
	}
	return categories
}
