package routines

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

var ErrRoutineNotFound = errors.New("routine not found")

const routineColumns = `id, name, description, difficulty, category, estimated_duration,
	target_muscle_groups, exercises, created_at, updated_at, is_custom`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns all routines, most recently created first.
func (r *Repo) List(ctx context.Context) (_ []WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT `+routineColumns+` FROM routines ORDER BY created_at DESC;`)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	list, err := rows2routines(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2routines: %w", err)
	}
	span.SetAttributes(attribute.Int("count", len(list)))
	return list, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	rows, err := r.db.Query(ctx, `SELECT `+routineColumns+` FROM routines WHERE id = $1;`, id)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	list, err := rows2routines(rows)
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, ErrRoutineNotFound
	}
	return &list[0], nil
}

func (r *Repo) Create(ctx context.Context, routine WorkoutRoutine) (_ *WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", routine.ID))

	musclesJson, err := json.Marshal(nonNil(routine.TargetMuscleGroups))
	if err != nil {
		return nil, fmt.Errorf("marshal target muscle groups: %w", err)
	}
	exercises := routine.Exercises
	if exercises == nil {
		exercises = []RoutineExercise{}
	}
	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal exercises: %w", err)
	}

	now := time.Now()
	rows, err := r.db.Query(
		ctx,
		`INSERT INTO routines
				(id, name, description, difficulty, category, estimated_duration,
				 target_muscle_groups, exercises, created_at, updated_at, is_custom)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10)
			RETURNING `+routineColumns+`;`,
		routine.ID, routine.Name, routine.Description, string(routine.Difficulty), routine.Category,
		routine.EstimatedDuration, musclesJson, exercisesJson, now, routine.IsCustom,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	defer rows.Close()

	list, err := rows2routines(rows)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if len(list) != 1 {
		return nil, errors.New("unexpected error [no rows returned]")
	}
	return &list[0], nil
}

func (r *Repo) Update(ctx context.Context, id string, assignments []fieldmap.Assignment) (_ *WorkoutRoutine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.update")
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
		fmt.Sprintf(`UPDATE routines SET %s WHERE id = $%d RETURNING %s;`, setClause, len(args), routineColumns),
		args...,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	defer rows.Close()

	list, err := rows2routines(rows)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if len(list) != 1 {
		return nil, ErrRoutineNotFound
	}
	return &list[0], nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM routines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

func rows2routines(rows pgx.Rows) ([]WorkoutRoutine, error) {
	list := make([]WorkoutRoutine, 0)
	for rows.Next() {
		var routine WorkoutRoutine
		var difficulty string
		var musclesBytes, exercisesBytes []byte
		if err := rows.Scan(
			&routine.ID,
			&routine.Name,
			&routine.Description,
			&difficulty,
			&routine.Category,
			&routine.EstimatedDuration,
			&musclesBytes,
			&exercisesBytes,
			&routine.CreatedAt,
			&routine.UpdatedAt,
			&routine.IsCustom,
		); err != nil {
			return nil, err
		}
		routine.Difficulty = Difficulty(difficulty)
		if len(musclesBytes) > 0 {
			if err := json.Unmarshal(musclesBytes, &routine.TargetMuscleGroups); err != nil {
				return nil, fmt.Errorf("unmarshal target muscle groups for routine %s: %w", routine.ID, err)
			}
		}
		if len(exercisesBytes) > 0 {
			if err := json.Unmarshal(exercisesBytes, &routine.Exercises); err != nil {
				return nil, fmt.Errorf("unmarshal exercises for routine %s: %w", routine.ID, err)
			}
		}
		routine.TargetMuscleGroups = nonNil(routine.TargetMuscleGroups)
		if routine.Exercises == nil {
			routine.Exercises = []RoutineExercise{}
		}
		list = append(list, routine)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
