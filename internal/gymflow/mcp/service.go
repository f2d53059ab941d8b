package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/gymflow/internal/gymflow/exercises"
	"github.com/2beens/gymflow/internal/gymflow/progress"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

const DefaultHistoryLimit = 10

// Gateway is the read side of the persistence gateway the tools work with.
type Gateway interface {
	ListExercises(ctx context.Context) ([]exercises.Exercise, error)
	ListRoutines(ctx context.Context) ([]routines.WorkoutRoutine, error)
	ListWorkouts(ctx context.Context) ([]workouts.Workout, error)
}

// progressService provides the progress data behind the tools. Used by Handler for testability.
type progressService interface {
	Stats(ctx context.Context, period progress.Period) (*progress.Stats, error)
	History(ctx context.Context, limit int) ([]workouts.Workout, error)
	PreviousPerformance(ctx context.Context, exerciseID string) (*progress.Previous, error)
	PersonalBests(ctx context.Context) ([]progress.PersonalBest, error)
	Routines(ctx context.Context, filter string) ([]routines.WorkoutRoutine, error)
	Exercises(ctx context.Context, muscleGroup string) ([]exercises.Exercise, error)
}

// ProgressService computes statistics over the persisted history with the progress engine.
type ProgressService struct {
	gateway Gateway
	engine  *progress.Engine
	now     func() time.Time
}

func NewProgressService(gateway Gateway, engine *progress.Engine) *ProgressService {
	return &ProgressService{
		gateway: gateway,
		engine:  engine,
		now:     time.Now,
	}
}

func (s *ProgressService) Stats(ctx context.Context, period progress.Period) (*progress.Stats, error) {
	history, err := s.gateway.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	stats := s.engine.Calculate(history, period, s.now())
	return &stats, nil
}

// History returns the newest limit workouts.
func (s *ProgressService) History(ctx context.Context, limit int) ([]workouts.Workout, error) {
	history, err := s.gateway.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// PreviousPerformance returns nil when the exercise was never done.
func (s *ProgressService) PreviousPerformance(ctx context.Context, exerciseID string) (*progress.Previous, error) {
	history, err := s.gateway.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return progress.PreviousPerformance(history, exerciseID), nil
}

func (s *ProgressService) PersonalBests(ctx context.Context) ([]progress.PersonalBest, error) {
	history, err := s.gateway.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return progress.PersonalBests(history), nil
}

func (s *ProgressService) Routines(ctx context.Context, filter string) ([]routines.WorkoutRoutine, error) {
	list, err := s.gateway.ListRoutines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines.Filter(list, filter), nil
}

func (s *ProgressService) Exercises(ctx context.Context, muscleGroup string) ([]exercises.Exercise, error) {
	list, err := s.gateway.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises.FilterByGroup(list, muscleGroup), nil
}
