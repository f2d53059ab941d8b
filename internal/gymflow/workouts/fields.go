package workouts

import (
	"errors"

	"github.com/2beens/gymflow/internal/gymflow/fieldmap"
	"github.com/2beens/gymflow/pkg"
)

var ErrInvalidWorkout = errors.New("invalid workout")

// Fields is the update table for PUT /api/workouts/{id}.
var Fields = fieldmap.Table{
	"id":        {Column: "id", ReadOnly: true},
	"name":      {Column: "name", Decode: fieldmap.String()},
	"date":      {Column: "date", Decode: fieldmap.Time()},
	"exercises": {Column: "exercises", Decode: fieldmap.JSONOf[[]WorkoutExercise]()},
	"duration":  {Column: "duration", Decode: fieldmap.NonNegativeInt()},
	"completed": {Column: "completed", Decode: fieldmap.Bool()},
}

func mapWriteErr(err error) error {
	switch {
	case pkg.IsUniqueViolationError(err):
		return ErrWorkoutExists
	case pkg.IsCheckViolationError(err):
		return ErrInvalidWorkout
	}
	return err
}
