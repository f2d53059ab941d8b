package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymflow/internal/gymflow/fieldmap"
	"github.com/2beens/gymflow/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrWorkoutExists   = errors.New("workout already exists")
)

const workoutColumns = `id, name, date, exercises, duration, completed`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the workout history, newest first.
func (r *Repo) List(ctx context.Context) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT `+workoutColumns+` FROM workout_history ORDER BY date DESC;`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	list, err := rows2workouts(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2workouts: %w", err)
	}
	span.SetAttributes(attribute.Int("count", len(list)))
	return list, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	rows, err := r.db.Query(ctx, `SELECT `+workoutColumns+` FROM workout_history WHERE id = $1;`, id)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	list, err := rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, ErrWorkoutNotFound
	}
	return &list[0], nil
}

// Create stores a workout in the history. A missing id or date is filled in by the caller.
func (r *Repo) Create(ctx context.Context, w Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", w.ID))

	exercisesJson, err := json.Marshal(nonNilExercises(w.Exercises))
	if err != nil {
		return nil, fmt.Errorf("marshal exercises: %w", err)
	}

	now := time.Now()
	rows, err := r.db.Query(
		ctx,
		`INSERT INTO workout_history
				(id, name, date, exercises, duration, completed, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING `+workoutColumns+`;`,
		w.ID, w.Name, w.Date, exercisesJson, w.Duration, w.Completed, now,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	defer rows.Close()

	list, err := rows2workouts(rows)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if len(list) != 1 {
		return nil, errors.New("unexpected error [no rows returned]")
	}
	return &list[0], nil
}

// Update applies the assignments built from the workout field table and bumps updated_at.
func (r *Repo) Update(ctx context.Context, id string, assignments []fieldmap.Assignment) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))
	span.SetAttributes(attribute.Int("fields", len(assignments)))

	assignments = append(assignments, fieldmap.Assignment{Column: "updated_at", Value: time.Now()})
	setClause, args := fieldmap.SetClause(assignments)
	args = append(args, id)

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`UPDATE workout_history SET %s WHERE id = $%d RETURNING %s;`, setClause, len(args), workoutColumns),
		args...,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	defer rows.Close()

	list, err := rows2workouts(rows)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if len(list) != 1 {
		return nil, ErrWorkoutNotFound
	}
	return &list[0], nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_history WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func rows2workouts(rows pgx.Rows) ([]Workout, error) {
	list := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		var exercisesBytes []byte
		if err := rows.Scan(&w.ID, &w.Name, &w.Date, &exercisesBytes, &w.Duration, &w.Completed); err != nil {
			return nil, err
		}
		if len(exercisesBytes) > 0 {
			if err := json.Unmarshal(exercisesBytes, &w.Exercises); err != nil {
				return nil, fmt.Errorf("unmarshal exercises for workout %s: %w", w.ID, err)
			}
		}
		w.Exercises = nonNilExercises(w.Exercises)
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func nonNilExercises(list []WorkoutExercise) []WorkoutExercise {
	if list == nil {
		return []WorkoutExercise{}
	}
	for i := range list {
		if list[i].Sets == nil {
			list[i].Sets = []Set{}
		}
	}
	return list
}
