package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymflow/internal/telemetry/tracing"
	"github.com/2beens/gymflow/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrExerciseExists = errors.New("exercise already exists")

const exerciseColumns = `id, name, muscle_group, category, description, target_muscles, equipment, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the catalog ordered by muscle group and name. An empty group returns everything.
func (r *Repo) List(ctx context.Context, muscleGroup string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("muscleGroup", muscleGroup))

	var rows pgx.Rows
	if muscleGroup == "" {
		rows, err = r.db.Query(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY muscle_group, name;`)
	} else {
		rows, err = r.db.Query(
			ctx,
			`SELECT `+exerciseColumns+` FROM exercises WHERE muscle_group = $1 ORDER BY name;`,
			muscleGroup,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	list, err := rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	span.SetAttributes(attribute.Int("count", len(list)))
	return list, nil
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", exercise.ID))

	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}
	targetJson, equipmentJson, err := marshalLists(exercise)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO exercises (`+exerciseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+exerciseColumns+`;`,
		exercise.ID, exercise.Name, exercise.MuscleGroup, exercise.Category, exercise.Description,
		targetJson, equipmentJson, exercise.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	defer rows.Close()

	list, err := rows2exercises(rows)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrExerciseExists
		}
		return nil, err
	}
	if len(list) != 1 {
		return nil, errors.New("unexpected error [no rows returned]")
	}
	return &list[0], nil
}

// Seed inserts the exercises that are not in the catalog yet and returns how many were added.
func (r *Repo) Seed(ctx context.Context, list []Exercise) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	batch := &pgx.Batch{}
	now := time.Now()
	for _, e := range list {
		targetJson, equipmentJson, err := marshalLists(e)
		if err != nil {
			return 0, err
		}
		batch.Queue(
			`INSERT INTO exercises (`+exerciseColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT DO NOTHING;`,
			e.ID, e.Name, e.MuscleGroup, e.Category, e.Description, targetJson, equipmentJson, now,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer func() {
		if closeErr := results.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	added := 0
	for range list {
		tag, err := results.Exec()
		if err != nil {
			return added, fmt.Errorf("seed exec: %w", err)
		}
		added += int(tag.RowsAffected())
	}
	span.SetAttributes(attribute.Int("added", added))
	return added, nil
}

func marshalLists(e Exercise) ([]byte, []byte, error) {
	targetJson, err := json.Marshal(nonNil(e.TargetMuscles))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal target muscles: %w", err)
	}
	equipmentJson, err := json.Marshal(nonNil(e.Equipment))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal equipment: %w", err)
	}
	return targetJson, equipmentJson, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	list := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		var targetBytes, equipmentBytes []byte
		if err := rows.Scan(
			&e.ID, &e.Name, &e.MuscleGroup, &e.Category, &e.Description,
			&targetBytes, &equipmentBytes, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(targetBytes) > 0 {
			if err := json.Unmarshal(targetBytes, &e.TargetMuscles); err != nil {
				return nil, fmt.Errorf("unmarshal target muscles for %s: %w", e.ID, err)
			}
		}
		if len(equipmentBytes) > 0 {
			if err := json.Unmarshal(equipmentBytes, &e.Equipment); err != nil {
				return nil, fmt.Errorf("unmarshal equipment for %s: %w", e.ID, err)
			}
		}
		list = append(list, e)
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
