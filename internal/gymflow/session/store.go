// Package session holds the in-progress workout, its rest timer and the local copy
// of the workout history. Every mutation works on a copy of the current workout and
// returns another copy, so callers never share state with the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/gymflow/internal/gymflow/progress"
	"github.com/2beens/gymflow/internal/gymflow/routines"
	"github.com/2beens/gymflow/internal/gymflow/workouts"
	"github.com/2beens/gymflow/internal/telemetry/metrics"
	"github.com/2beens/gymflow/internal/telemetry/tracing"
)

const (
	DefaultRestTime = 90
	notifyTimeout   = 3 * time.Second
)

var (
	ErrInvalidState      = errors.New("invalid state")
	ErrNoActiveWorkout   = fmt.Errorf("%w: no active workout", ErrInvalidState)
	ErrWorkoutInProgress = fmt.Errorf("%w: a workout is already in progress", ErrInvalidState)
	ErrSetNotFound       = errors.New("set not found")
	ErrInvalidValue      = errors.New("invalid value")
)

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=session_test

type workoutGateway interface {
	ListWorkouts(ctx context.Context) ([]workouts.Workout, error)
	CreateWorkout(ctx context.Context, w workouts.Workout) (*workouts.Workout, error)
	DeleteWorkout(ctx context.Context, id string) (*workouts.DeleteResponse, error)
}

// SetUpdate holds the set fields to change, nil fields are left as they are.
type SetUpdate struct {
	Weight    *float64 `json:"weight,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	RestTime  *int     `json:"restTime,omitempty"`
}

func (u SetUpdate) validate() error {
	if u.Weight != nil && *u.Weight < 0 {
		return fmt.Errorf("%w: negative weight", ErrInvalidValue)
	}
	if u.Reps != nil && *u.Reps < 0 {
		return fmt.Errorf("%w: negative reps", ErrInvalidValue)
	}
	if u.RestTime != nil && *u.RestTime < 0 {
		return fmt.Errorf("%w: negative rest time", ErrInvalidValue)
	}
	return nil
}

type StoreParams struct {
	// Gateway persists completed workouts. Without one the history is local only.
	Gateway  workoutGateway
	Notifier Notifier
	// MetricsManager is required.
	MetricsManager  *metrics.Manager
	Engine          *progress.Engine
	TickInterval    time.Duration
	DefaultRestTime int
	Now             func() time.Time
	NewID           func() string
}

type Store struct {
	mu      sync.Mutex
	gateway workoutGateway
	timer   *Timer

	notifier        Notifier
	metricsManager  *metrics.Manager
	engine          *progress.Engine
	defaultRestTime int
	now             func() time.Time
	newID           func() string

	current *workouts.Workout
	// history is ordered most recent first
	history []workouts.Workout
}

func NewStore(params StoreParams) *Store {
	s := &Store{
		gateway:         params.Gateway,
		notifier:        params.Notifier,
		metricsManager:  params.MetricsManager,
		engine:          params.Engine,
		defaultRestTime: params.DefaultRestTime,
		now:             params.Now,
		newID:           params.NewID,
		history:         []workouts.Workout{},
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{}
	}
	if s.engine == nil {
		s.engine = progress.NewEngine(time.Local)
	}
	if s.defaultRestTime <= 0 {
		s.defaultRestTime = DefaultRestTime
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	s.timer = NewTimer(TimerParams{
		TickInterval: params.TickInterval,
		OnTick: func(at ActiveTimer) {
			log.Tracef("rest timer %s: %ds left", at.SetID, at.RemainingTime)
		},
		OnExpire: s.timerExpired,
		Now:      s.now,
	})
	return s
}

// Close tears the rest timer down.
func (s *Store) Close() {
	s.timer.Close()
}

func (s *Store) timerExpired(at ActiveTimer) {
	s.metricsManager.CounterRestTimersExpired.Inc()
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := s.notifier.TimerExpired(ctx, at); err != nil {
		log.Warnf("rest timer %s expired, notify failed: %s", at.SetID, err)
	}
}

func (s *Store) StartWorkout(name string) (*workouts.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, ErrWorkoutInProgress
	}
	if name == "" {
		name = workouts.DefaultWorkoutName
	}

	s.current = &workouts.Workout{
		ID:        s.newID(),
		Name:      name,
		Date:      s.now(),
		Exercises: []workouts.WorkoutExercise{},
	}
	s.workoutStarted()
	return s.current.Clone(), nil
}

// StartWorkoutFromRoutine creates one workout exercise per routine exercise, with the
// planned number of sets at 0 kg and the planned reps and rest.
func (s *Store) StartWorkoutFromRoutine(routine routines.WorkoutRoutine) (*workouts.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, ErrWorkoutInProgress
	}

	w := &workouts.Workout{
		ID:        s.newID(),
		Name:      routine.Name,
		Date:      s.now(),
		Exercises: make([]workouts.WorkoutExercise, 0, len(routine.Exercises)),
	}
	if w.Name == "" {
		w.Name = workouts.DefaultWorkoutName
	}
	for _, re := range routine.Exercises {
		we := workouts.WorkoutExercise{
			ID:         s.newID(),
			ExerciseID: re.ExerciseID,
			Sets:       make([]workouts.Set, 0, max(re.Sets, 0)),
			Notes:      re.Notes,
		}
		for i := 0; i < re.Sets; i++ {
			we.Sets = append(we.Sets, workouts.Set{
				ID:       s.newID(),
				Weight:   0,
				Reps:     re.Reps,
				RestTime: re.RestTime,
			})
		}
		w.Exercises = append(w.Exercises, we)
	}

	s.current = w
	s.workoutStarted()
	log.Debugf("workout %s started from routine %s", w.ID, routine.ID)
	return s.current.Clone(), nil
}

func (s *Store) workoutStarted() {
	s.metricsManager.CounterWorkoutsStarted.Inc()
	s.metricsManager.GaugeActiveWorkout.Set(1)
	log.Debugf("workout started: %s [%s]", s.current.ID, s.current.Name)
}

// AddExercise appends a catalog exercise with initialSets empty sets (at least one).
func (s *Store) AddExercise(exerciseID string, initialSets int) (*workouts.Workout, error) {
	return s.mutate(func(w *workouts.Workout) error {
		if initialSets <= 0 {
			initialSets = 1
		}
		we := workouts.WorkoutExercise{
			ID:         s.newID(),
			ExerciseID: exerciseID,
			Sets:       make([]workouts.Set, 0, initialSets),
		}
		for i := 0; i < initialSets; i++ {
			we.Sets = append(we.Sets, workouts.Set{
				ID:       s.newID(),
				RestTime: s.defaultRestTime,
			})
		}
		w.Exercises = append(w.Exercises, we)
		return nil
	})
}

func (s *Store) RemoveExercise(id string) (*workouts.Workout, error) {
	return s.mutate(func(w *workouts.Workout) error {
		i := w.ExerciseIndex(id)
		if i < 0 {
			return nil
		}
		w.Exercises = append(w.Exercises[:i], w.Exercises[i+1:]...)
		if at := s.timer.Active(); at != nil && at.ExerciseID == id {
			s.timer.Stop()
		}
		return nil
	})
}

// AddSet appends a set copying weight, reps and rest of the last set of the exercise.
func (s *Store) AddSet(exerciseID string) (*workouts.Workout, error) {
	return s.mutate(func(w *workouts.Workout) error {
		i := w.ExerciseIndex(exerciseID)
		if i < 0 {
			return nil
		}
		set := workouts.Set{
			ID:       s.newID(),
			RestTime: s.defaultRestTime,
		}
		if sets := w.Exercises[i].Sets; len(sets) > 0 {
			last := sets[len(sets)-1]
			set.Weight = last.Weight
			set.Reps = last.Reps
			set.RestTime = last.RestTime
		}
		w.Exercises[i].Sets = append(w.Exercises[i].Sets, set)
		return nil
	})
}

// RemoveSet removes the set at index; an index out of range changes nothing.
func (s *Store) RemoveSet(exerciseID string, index int) (*workouts.Workout, error) {
	return s.mutate(func(w *workouts.Workout) error {
		i := w.ExerciseIndex(exerciseID)
		if i < 0 {
			return nil
		}
		sets := w.Exercises[i].Sets
		if index < 0 || index >= len(sets) {
			return nil
		}
		removed := sets[index]
		w.Exercises[i].Sets = append(sets[:index], sets[index+1:]...)
		s.stopTimerFor(removed.ID)
		return nil
	})
}

// UpdateSet merges the update into the set. Marking a set as not completed stops
// the rest timer it started.
func (s *Store) UpdateSet(exerciseID, setID string, update SetUpdate) (*workouts.Workout, error) {
	if err := update.validate(); err != nil {
		return nil, err
	}
	return s.mutate(func(w *workouts.Workout) error {
		set := findSet(w, exerciseID, setID)
		if set == nil {
			return nil
		}
		applyUpdate(set, update)
		if update.Completed != nil && !*update.Completed {
			s.stopTimerFor(setID)
		}
		return nil
	})
}

// CompleteSet marks the set as done and starts its rest timer.
func (s *Store) CompleteSet(exerciseID, setID string) (*workouts.Workout, error) {
	return s.mutate(func(w *workouts.Workout) error {
		set := findSet(w, exerciseID, setID)
		if set == nil {
			return ErrSetNotFound
		}
		set.Completed = true
		s.metricsManager.CounterSetsCompleted.Inc()
		s.startTimer(exerciseID, setID, set.RestTime)
		return nil
	})
}

// UndoSet reverts a completed set and cancels the timer it started.
func (s *Store) UndoSet(exerciseID, setID string) (*workouts.Workout, error) {
	notCompleted := false
	return s.UpdateSet(exerciseID, setID, SetUpdate{Completed: &notCompleted})
}

// UpdateExerciseRestTime sets the rest time of every set of the exercise.
func (s *Store) UpdateExerciseRestTime(exerciseID string, restTime int) (*workouts.Workout, error) {
	if restTime < 0 {
		return nil, fmt.Errorf("%w: negative rest time", ErrInvalidValue)
	}
	return s.mutate(func(w *workouts.Workout) error {
		i := w.ExerciseIndex(exerciseID)
		if i < 0 {
			return nil
		}
		for j := range w.Exercises[i].Sets {
			w.Exercises[i].Sets[j].RestTime = restTime
		}
		return nil
	})
}

// StartTimer starts a rest countdown for a set of the current workout, replacing any running one.
func (s *Store) StartTimer(exerciseID, setID string, seconds int) (*ActiveTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveWorkout
	}
	if findSet(s.current, exerciseID, setID) == nil {
		return nil, ErrSetNotFound
	}
	s.startTimer(exerciseID, setID, seconds)
	return s.timer.Active(), nil
}

func (s *Store) StopTimer() {
	s.timer.Stop()
}

func (s *Store) ActiveTimer() *ActiveTimer {
	return s.timer.Active()
}

func (s *Store) startTimer(exerciseID, setID string, seconds int) {
	s.metricsManager.CounterRestTimersStarted.Inc()
	s.timer.Start(exerciseID, setID, seconds)
}

func (s *Store) stopTimerFor(setID string) {
	if at := s.timer.Active(); at != nil && at.SetID == setID {
		s.timer.Stop()
	}
}

// CompleteWorkout finishes the current workout and adds it on top of the history.
// The local history is updated first; a failure to persist it is logged and counted
// but does not fail the call.
func (s *Store) CompleteWorkout(ctx context.Context) (_ *workouts.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.workout.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveWorkout
	}
	s.timer.Stop()

	finished := s.current.Clone()
	finished.Completed = true
	finished.Duration = int(s.now().Sub(finished.Date) / time.Minute)
	if finished.Duration < 0 {
		finished.Duration = 0
	}

	s.history = append([]workouts.Workout{*finished}, s.history...)
	s.current = nil
	s.mu.Unlock()

	s.metricsManager.CounterWorkoutsCompleted.Inc()
	s.metricsManager.GaugeActiveWorkout.Set(0)
	s.metricsManager.HistogramWorkoutDuration.Observe(float64(finished.Duration))
	span.SetAttributes(attribute.String("workout.id", finished.ID))
	span.SetAttributes(attribute.Int("workout.duration", finished.Duration))

	if s.gateway != nil {
		if _, persistErr := s.gateway.CreateWorkout(ctx, *finished.Clone()); persistErr != nil {
			s.metricsManager.CounterWorkoutPersistFails.Inc()
			log.Errorf("workout %s completed, but not persisted: %s", finished.ID, persistErr)
		}
	}

	log.Debugf("workout completed: %s, %d min", finished.ID, finished.Duration)
	return finished, nil
}

// DeleteWorkout removes a workout from the history, but only after the remote delete
// succeeded. On failure the history is left untouched and the gateway error returned.
func (s *Store) DeleteWorkout(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.history.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	if s.gateway != nil {
		if _, err := s.gateway.DeleteWorkout(ctx, id); err != nil {
			log.Warnf("delete workout %s: %s", id, err)
			return false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.history {
		if s.history[i].ID == id {
			s.history = append(s.history[:i:i], s.history[i+1:]...)
			break
		}
	}
	return true, nil
}

// RefreshHistory replaces the local history with the persisted one.
// When the fetch fails the cached history stays.
func (s *Store) RefreshHistory(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "session.history.refresh")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.gateway == nil {
		return nil
	}
	list, err := s.gateway.ListWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("list workouts: %w", err)
	}

	s.mu.Lock()
	s.history = workouts.CloneAll(list)
	s.mu.Unlock()
	span.SetAttributes(attribute.Int("count", len(list)))
	return nil
}

// Restore makes w the current workout again, e.g. from a snapshot after a restart.
func (s *Store) Restore(w *workouts.Workout) error {
	if w == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return ErrWorkoutInProgress
	}
	s.current = w.Clone()
	s.metricsManager.GaugeActiveWorkout.Set(1)
	log.Infof("workout %s [%s] restored", w.ID, w.Name)
	return nil
}

func (s *Store) CurrentWorkout() *workouts.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

func (s *Store) History() []workouts.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return workouts.CloneAll(s.history)
}

// Elapsed is the running time of the current workout, 0 without one.
func (s *Store) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	elapsed := s.now().Sub(s.current.Date)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (s *Store) Stats(period progress.Period) progress.Stats {
	return s.engine.Calculate(s.History(), period, s.now())
}

func (s *Store) DurationSeries(period progress.Period) []progress.DayPoint {
	return s.engine.DurationSeries(s.History(), period, s.now())
}

func (s *Store) PreviousPerformance(exerciseID string) *progress.Previous {
	return progress.PreviousPerformance(s.History(), exerciseID)
}

func (s *Store) PersonalBests() []progress.PersonalBest {
	return progress.PersonalBests(s.History())
}

// mutate runs fn on a copy of the current workout and keeps the copy when fn succeeds.
func (s *Store) mutate(fn func(w *workouts.Workout) error) (*workouts.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveWorkout
	}
	next := s.current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.current = next
	return s.current.Clone(), nil
}

func findSet(w *workouts.Workout, exerciseID, setID string) *workouts.Set {
	i := w.ExerciseIndex(exerciseID)
	if i < 0 {
		return nil
	}
	for j := range w.Exercises[i].Sets {
		if w.Exercises[i].Sets[j].ID == setID {
			return &w.Exercises[i].Sets[j]
		}
	}
	return nil
}

func applyUpdate(set *workouts.Set, update SetUpdate) {
	if update.Weight != nil {
		set.Weight = *update.Weight
	}
	if update.Reps != nil {
		set.Reps = *update.Reps
	}
	if update.Completed != nil {
		set.Completed = *update.Completed
	}
	if update.RestTime != nil {
		set.RestTime = *update.RestTime
	}
}
