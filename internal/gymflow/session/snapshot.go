package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/2beens/gymflow/internal/gymflow/workouts"
	"github.com/2beens/gymflow/internal/telemetry/tracing"
)

const (
	DefaultSnapshotKey = "gymflow:session:current"
	DefaultSnapshotTTL = 12 * time.Hour
)

// SnapshotStore keeps a copy of the in-progress workout outside the process,
// so a restarted service can pick the session up again.
type SnapshotStore interface {
	Save(ctx context.Context, w *workouts.Workout) error
	// Load returns nil without an error when there is no snapshot.
	Load(ctx context.Context) (*workouts.Workout, error)
	Clear(ctx context.Context) error
}

type RedisSnapshots struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration
}

func NewRedisSnapshots(rdb redis.UniversalClient, ttl time.Duration) *RedisSnapshots {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshots{
		rdb: rdb,
		key: DefaultSnapshotKey,
		ttl: ttl,
	}
}

func (s *RedisSnapshots) Save(ctx context.Context, w *workouts.Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.session.snapshot.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if w == nil {
		return s.Clear(ctx)
	}
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workout: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSnapshots) Load(ctx context.Context) (_ *workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.session.snapshot.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}

	var w workouts.Workout
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &w, nil
}

func (s *RedisSnapshots) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", s.key, err)
	}
	return nil
}
