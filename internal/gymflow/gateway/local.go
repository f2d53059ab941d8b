package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/2beens/gymflow/internal/gymflow/exercises"
	"github.com/2beens/gymflow/internal/gymflow/fieldmap"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=gateway_mocks_test.go -package=gateway_test

type exercisesRepo interface {
	List(ctx context.Context, muscleGroup string) ([]exercises.Exercise, error)
}

type routinesRepo interface {
	List(ctx context.Context) ([]routines.WorkoutRoutine, error)
	Get(ctx context.Context, id string) (*routines.WorkoutRoutine, error)
	Create(ctx context.Context, routine routines.WorkoutRoutine) (*routines.WorkoutRoutine, error)
	Update(ctx context.Context, id string, assignments []fieldmap.Assignment) (*routines.WorkoutRoutine, error)
	Delete(ctx context.Context, id string) error
}

type workoutsRepo interface {
	List(ctx context.Context) ([]workouts.Workout, error)
	Get(ctx context.Context, id string) (*workouts.Workout, error)
	Create(ctx context.Context, w workouts.Workout) (*workouts.Workout, error)
	Update(ctx context.Context, id string, assignments []fieldmap.Assignment) (*workouts.Workout, error)
	Delete(ctx context.Context, id string) error
}

// Local serves the gateway in-process, straight from the repos, for the MCP server
// and the service itself.
type Local struct {
	exercises exercisesRepo
	routines  routinesRepo
	workouts  workoutsRepo
	now       func() time.Time
}

func NewLocal(exercisesRepo exercisesRepo, routinesRepo routinesRepo, workoutsRepo workoutsRepo) *Local {
	return &Local{
		exercises: exercisesRepo,
		routines:  routinesRepo,
		workouts:  workoutsRepo,
		now:       time.Now,
	}
}

var _ Gateway = (*Local)(nil)

func (l *Local) ListExercises(ctx context.Context) ([]exercises.Exercise, error) {
	list, err := l.exercises.List(ctx, "")
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return list, nil
}

func (l *Local) ListRoutines(ctx context.Context) ([]routines.WorkoutRoutine, error) {
	list, err := l.routines.List(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return list, nil
}

func (l *Local) GetRoutine(ctx context.Context, id string) (*routines.WorkoutRoutine, error) {
	routine, err := l.routines.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return routine, nil
}

func (l *Local) CreateRoutine(ctx context.Context, routine routines.WorkoutRoutine) (*routines.WorkoutRoutine, error) {
	routine.ID = uuid.NewString()
	if routine.Difficulty == "" {
		routine.Difficulty = routines.DifficultyBeginner
	}
	if !routine.Difficulty.IsValid() {
		return nil, &StatusError{StatusCode: http.StatusBadRequest, Message: "invalid difficulty"}
	}
	saved, err := l.routines.Create(ctx, routine)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return saved, nil
}

func (l *Local) UpdateRoutine(ctx context.Context, id string, partial map[string]any) (*routines.WorkoutRoutine, error) {
	assignments, err := buildAssignments(routines.Fields, partial)
	if err != nil {
		return nil, err
	}
	updated, err := l.routines.Update(ctx, id, assignments)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return updated, nil
}

func (l *Local) DeleteRoutine(ctx context.Context, id string) (*workouts.DeleteResponse, error) {
	if err := l.routines.Delete(ctx, id); err != nil {
		return nil, mapRepoErr(err)
	}
	return &workouts.DeleteResponse{Success: true, ID: id}, nil
}

func (l *Local) ListWorkouts(ctx context.Context) ([]workouts.Workout, error) {
	list, err := l.workouts.List(ctx)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return list, nil
}

func (l *Local) GetWorkout(ctx context.Context, id string) (*workouts.Workout, error) {
	w, err := l.workouts.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return w, nil
}

func (l *Local) CreateWorkout(ctx context.Context, w workouts.Workout) (*workouts.Workout, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Date.IsZero() {
		w.Date = l.now()
	}
	saved, err := l.workouts.Create(ctx, w)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return saved, nil
}

func (l *Local) UpdateWorkout(ctx context.Context, id string, partial map[string]any) (*workouts.Workout, error) {
	assignments, err := buildAssignments(workouts.Fields, partial)
	if err != nil {
		return nil, err
	}
	updated, err := l.workouts.Update(ctx, id, assignments)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return updated, nil
}

func (l *Local) DeleteWorkout(ctx context.Context, id string) (*workouts.DeleteResponse, error) {
	if err := l.workouts.Delete(ctx, id); err != nil {
		return nil, mapRepoErr(err)
	}
	return &workouts.DeleteResponse{Success: true, ID: id}, nil
}

// buildAssignments runs a partial update through the same field table the HTTP
// handlers use, so both paths accept the same keys.
func buildAssignments(table fieldmap.Table, partial map[string]any) ([]fieldmap.Assignment, error) {
	body := make(map[string]json.RawMessage, len(partial))
	for key, value := range partial {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, &StatusError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("%s: %s", key, err)}
		}
		body[key] = raw
	}
	assignments, err := table.Build(body)
	if err != nil {
		return nil, &StatusError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	return assignments, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, workouts.ErrWorkoutNotFound),
		errors.Is(err, routines.ErrRoutineNotFound):
		return &StatusError{StatusCode: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, workouts.ErrWorkoutExists),
		errors.Is(err, exercises.ErrExerciseExists):
		return &StatusError{StatusCode: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, workouts.ErrInvalidWorkout),
		errors.Is(err, routines.ErrInvalidRoutine):
		return &StatusError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	return fmt.Errorf("%w: %s", ErrPersistenceFailure, err)
}
