//go:build integration

package test

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/2beens/gymflow/internal/gymflow/exercises"
	"github.com/2beens/gymflow/internal/gymflow/gateway"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
)

func (s *IntegrationTestSuite) TestExercisesCatalog() {
	ctx := context.Background()
	s.client.InvalidateCache()

	list, err := s.client.ListExercises(ctx)
	s.Require().NoError(err)
	s.Require().NotEmpty(list)

	names := exercises.NameIndex(list)
	s.Equal("Bench Press", names["bench-press"])

	for i := 1; i < len(list); i++ {
		s.LessOrEqual(list[i-1].MuscleGroup, list[i].MuscleGroup, "catalog not grouped at %s", list[i].ID)
	}
}

func (s *IntegrationTestSuite) TestRoutinesCRUD() {
	ctx := context.Background()

	name := gofakeit.AppName() + " Routine"
	created, err := s.client.CreateRoutine(ctx, routines.WorkoutRoutine{
		Name:              name,
		Difficulty:        routines.DifficultyIntermediate,
		Category:          "strength",
		EstimatedDuration: 50,
		Exercises: []routines.RoutineExercise{
			{ExerciseID: "bench-press", Name: "Bench Press", Sets: 3, Reps: 8, RestTime: 120},
		},
		IsCustom: true,
	})
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal(name, created.Name)

	fetched, err := s.client.GetRoutine(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Len(fetched.Exercises, 1)
	s.Equal(120, fetched.Exercises[0].RestTime)

	updated, err := s.client.UpdateRoutine(ctx, created.ID, map[string]any{
		"name":              name + " v2",
		"estimatedDuration": 55,
	})
	s.Require().NoError(err)
	s.Equal(name+" v2", updated.Name)
	s.Equal(55, updated.EstimatedDuration)
	s.Equal(routines.DifficultyIntermediate, updated.Difficulty)

	_, err = s.client.UpdateRoutine(ctx, created.ID, map[string]any{"target_muscle_groups": []string{"chest"}})
	s.ErrorIs(err, gateway.ErrPersistenceFailure)
	s.Equal(400, gateway.StatusCode(err))

	list, err := s.client.ListRoutines(ctx)
	s.Require().NoError(err)
	custom := routines.Filter(list, routines.FilterCustom)
	s.NotEmpty(custom)

	resp, err := s.client.DeleteRoutine(ctx, created.ID)
	s.Require().NoError(err)
	s.True(resp.Success)
	s.Equal(created.ID, resp.ID)

	_, err = s.client.GetRoutine(ctx, created.ID)
	s.ErrorIs(err, gateway.ErrNotFound)
	_, err = s.client.DeleteRoutine(ctx, created.ID)
	s.ErrorIs(err, gateway.ErrNotFound)
}

func (s *IntegrationTestSuite) TestWorkoutsCRUD() {
	ctx := context.Background()
	s.deleteAllWorkouts()

	older, err := s.client.CreateWorkout(ctx, workouts.Workout{
		ID:        gofakeit.UUID(),
		Name:      "Leg Day",
		Date:      time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Second),
		Duration:  40,
		Exercises: []workouts.WorkoutExercise{},
		Completed: true,
	})
	s.Require().NoError(err)

	newer, err := s.client.CreateWorkout(ctx, workouts.Workout{
		ID:   gofakeit.UUID(),
		Name: "Push Day",
		Date: time.Now().UTC().Truncate(time.Second),
		Exercises: []workouts.WorkoutExercise{
			{ID: gofakeit.UUID(), ExerciseID: "bench-press", Sets: []workouts.Set{
				{ID: gofakeit.UUID(), Weight: 80, Reps: 8, Completed: true, RestTime: 90},
			}},
		},
		Duration:  55,
		Completed: true,
	})
	s.Require().NoError(err)

	_, err = s.client.CreateWorkout(ctx, *newer)
	s.Equal(409, gateway.StatusCode(err))

	list, err := s.client.ListWorkouts(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
	s.Require().Len(list[0].Exercises, 1)
	s.Equal(80.0, list[0].Exercises[0].Sets[0].Weight)

	updated, err := s.client.UpdateWorkout(ctx, older.ID, map[string]any{"duration": 45})
	s.Require().NoError(err)
	s.Equal(45, updated.Duration)
	s.Equal("Leg Day", updated.Name)

	_, err = s.client.UpdateWorkout(ctx, older.ID, map[string]any{"duration": -1})
	s.Equal(400, gateway.StatusCode(err))

	resp, err := s.client.DeleteWorkout(ctx, older.ID)
	s.Require().NoError(err)
	s.True(resp.Success)

	_, err = s.client.GetWorkout(ctx, older.ID)
	s.ErrorIs(err, gateway.ErrNotFound)
}
