package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const TimerExpiredChannel = "gymflow:timer:expired"

// Notifier is told when a rest timer runs out. Errors are logged, never retried.
type Notifier interface {
	TimerExpired(ctx context.Context, timer ActiveTimer) error
}

type LogNotifier struct{}

func (LogNotifier) TimerExpired(_ context.Context, timer ActiveTimer) error {
	log.Infof("rest over: exercise %s, set %s (%ds)", timer.ExerciseID, timer.SetID, timer.Duration)
	return nil
}

// RedisNotifier publishes the expired timer as JSON, so other devices and
// processes can ring the bell.
type RedisNotifier struct {
	rdb     redis.UniversalClient
	channel string
}

func NewRedisNotifier(rdb redis.UniversalClient) *RedisNotifier {
	return &RedisNotifier{
		rdb:     rdb,
		channel: TimerExpiredChannel,
	}
}

func (n *RedisNotifier) TimerExpired(ctx context.Context, timer ActiveTimer) error {
	payload, err := json.Marshal(timer)
	if err != nil {
		return fmt.Errorf("marshal timer: %w", err)
	}
	if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", n.channel, err)
	}
	return nil
}

// MultiNotifier notifies all of its notifiers, even when some of them fail.
type MultiNotifier []Notifier

func (m MultiNotifier) TimerExpired(ctx context.Context, timer ActiveTimer) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.TimerExpired(ctx, timer))
	}
	return err
}
