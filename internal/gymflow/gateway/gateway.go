// Package gateway is the persistence boundary of the workout session: CRUD on the
// exercise catalog, routines and the workout history, over HTTP or in-process.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/2beens/gymflow/internal/gymflow/exercises"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrPersistenceFailure = errors.New("persistence failure")
)

type Gateway interface {
	ListExercises(ctx context.Context) ([]exercises.Exercise, error)

	ListRoutines(ctx context.Context) ([]routines.WorkoutRoutine, error)
	GetRoutine(ctx context.Context, id string) (*routines.WorkoutRoutine, error)
	CreateRoutine(ctx context.Context, routine routines.WorkoutRoutine) (*routines.WorkoutRoutine, error)
	UpdateRoutine(ctx context.Context, id string, partial map[string]any) (*routines.WorkoutRoutine, error)
	DeleteRoutine(ctx context.Context, id string) (*workouts.DeleteResponse, error)

	ListWorkouts(ctx context.Context) ([]workouts.Workout, error)
	GetWorkout(ctx context.Context, id string) (*workouts.Workout, error)
	CreateWorkout(ctx context.Context, w workouts.Workout) (*workouts.Workout, error)
	UpdateWorkout(ctx context.Context, id string, partial map[string]any) (*workouts.Workout, error)
	DeleteWorkout(ctx context.Context, id string) (*workouts.DeleteResponse, error)
}

// StatusError is a non-success response. 404 matches ErrNotFound, any other status
// matches ErrPersistenceFailure.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrPersistenceFailure:
		return e.StatusCode != http.StatusNotFound
	}
	return false
}

// StatusCode maps an error from a gateway call to the HTTP status to answer with.
func StatusCode(err error) int {
	var statusErr *StatusError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
