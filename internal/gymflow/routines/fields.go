package routines

import (
	"errors"

	"github.com/2beens/gymflow/internal/gymflow/fieldmap"
	"github.com/2beens/gymflow/pkg"
)

var ErrInvalidRoutine = errors.New("invalid routine")

// Fields is the update table for PUT /api/routines/{id}. updated_at is always set by the repo.
var Fields = fieldmap.Table{
	"id":                 {Column: "id", ReadOnly: true},
	"name":               {Column: "name", Decode: fieldmap.NonEmptyString()},
	"description":        {Column: "description", Decode: fieldmap.String()},
	"difficulty":         {Column: "difficulty", Decode: fieldmap.OneOf(string(DifficultyBeginner), string(DifficultyIntermediate), string(DifficultyAdvanced))},
	"category":           {Column: "category", Decode: fieldmap.String()},
	"estimatedDuration":  {Column: "estimated_duration", Decode: fieldmap.NonNegativeInt()},
	"targetMuscleGroups": {Column: "target_muscle_groups", Decode: fieldmap.JSONOf[[]string]()},
	"exercises":          {Column: "exercises", Decode: fieldmap.JSONOf[[]RoutineExercise]()},
	"createdAt":          {Column: "created_at", Decode: fieldmap.Time()},
	"updatedAt":          {Column: "updated_at", ReadOnly: true},
	"isCustom":           {Column: "is_custom", Decode: fieldmap.Bool()},
}

func mapWriteErr(err error) error {
	if pkg.IsCheckViolationError(err) {
		return ErrInvalidRoutine
	}
	return err
}
