package exercises

import (
	"sort"
	"time"
)

type Exercise struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	MuscleGroup   string    `json:"muscleGroup" yaml:"muscle_group"`
	Category      string    `json:"category,omitempty" yaml:"category"`
	Description   string    `json:"description,omitempty" yaml:"description"`
	TargetMuscles []string  `json:"targetMuscles,omitempty" yaml:"target_muscles"`
	Equipment     []string  `json:"equipment,omitempty" yaml:"equipment"`
	CreatedAt     time.Time `json:"createdAt" yaml:"-"`
}

// MuscleGroup is one entry of the grouped catalog.
type MuscleGroup struct {
	Name      string     `json:"muscleGroup"`
	Exercises []Exercise `json:"exercises"`
}

// GroupByMuscle groups the catalog by muscle group. Groups are ordered by name,
// exercises keep their input order.
func GroupByMuscle(list []Exercise) []MuscleGroup {
	index := make(map[string]int)
	groups := make([]MuscleGroup, 0)
	for _, e := range list {
		i, ok := index[e.MuscleGroup]
		if !ok {
			i = len(groups)
			index[e.MuscleGroup] = i
			groups = append(groups, MuscleGroup{Name: e.MuscleGroup})
		}
		groups[i].Exercises = append(groups[i].Exercises, e)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// FilterByGroup returns the exercises of one muscle group; an empty group keeps all.
func FilterByGroup(list []Exercise, group string) []Exercise {
	if group == "" {
		return list
	}
	filtered := make([]Exercise, 0)
	for _, e := range list {
		if e.MuscleGroup == group {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// NameIndex maps exercise ids to names, for display of workouts that only carry ids.
func NameIndex(list []Exercise) map[string]string {
	names := make(map[string]string, len(list))
	for _, e := range list {
		names[e.ID] = e.Name
	}
	return names
}
