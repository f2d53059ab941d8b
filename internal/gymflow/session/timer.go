package session

import (
	"sync"
	"time"
)

const DefaultTickInterval = time.Second

// ActiveTimer is the running rest countdown. ExerciseID is the workout exercise
// (not the catalog exercise) holding the set that started it.
type ActiveTimer struct {
	ExerciseID    string    `json:"exerciseId"`
	SetID         string    `json:"setId"`
	RemainingTime int       `json:"remainingTime"`
	Duration      int       `json:"duration"`
	StartedAt     time.Time `json:"startedAt"`
}

type TimerParams struct {
	// TickInterval is the length of one countdown second, tests shorten it.
	TickInterval time.Duration
	// OnTick and OnExpire run on a timer goroutine and must not call back into the Timer.
	OnTick   func(ActiveTimer)
	OnExpire func(ActiveTimer)
	Now      func() time.Time
}

// Timer is a single rest countdown. Starting a new countdown replaces the running one.
type Timer struct {
	mu         sync.Mutex
	tick       time.Duration
	onTick     func(ActiveTimer)
	onExpire   func(ActiveTimer)
	now        func() time.Time
	active     *ActiveTimer
	generation uint64
	cancel     chan struct{}
	done       chan struct{}
	// expiring counts OnExpire calls still running, Close waits for them
	expiring sync.WaitGroup
	closed   bool
}

func NewTimer(params TimerParams) *Timer {
	tick := params.TickInterval
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	onTick := params.OnTick
	if onTick == nil {
		onTick = func(ActiveTimer) {}
	}
	onExpire := params.OnExpire
	if onExpire == nil {
		onExpire = func(ActiveTimer) {}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Timer{
		tick:     tick,
		onTick:   onTick,
		onExpire: onExpire,
		now:      now,
	}
}

// Start begins a countdown of seconds, stopping the previous one first.
// A zero or negative duration expires right away, OnExpire then runs on its own goroutine.
func (t *Timer) Start(exerciseID, setID string, seconds int) ActiveTimer {
	at := ActiveTimer{
		ExerciseID:    exerciseID,
		SetID:         setID,
		RemainingTime: seconds,
		Duration:      seconds,
		StartedAt:     t.now(),
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ActiveTimer{}
	}
	prevDone := t.stopLocked()

	if seconds <= 0 {
		t.expiring.Add(1)
		t.mu.Unlock()
		waitDone(prevDone)
		at.RemainingTime = 0
		go t.expire(at)
		return at
	}

	gen := t.generation
	cancel := make(chan struct{})
	done := make(chan struct{})
	active := at
	t.active = &active
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	waitDone(prevDone)
	go t.run(gen, cancel, done)
	return at
}

// Stop discards the running countdown and waits for its goroutine to exit.
// Stopping an idle timer does nothing.
func (t *Timer) Stop() {
	t.mu.Lock()
	done := t.stopLocked()
	t.mu.Unlock()
	waitDone(done)
}

// Active returns a copy of the running countdown, or nil when idle.
func (t *Timer) Active() *ActiveTimer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return nil
	}
	at := *t.active
	return &at
}

// Close stops the timer for good, later Start calls are ignored.
// It returns once the countdown and any running OnExpire call are finished.
func (t *Timer) Close() {
	t.mu.Lock()
	t.closed = true
	done := t.stopLocked()
	t.mu.Unlock()
	waitDone(done)
	t.expiring.Wait()
}

func (t *Timer) stopLocked() chan struct{} {
	t.generation++
	if t.cancel != nil {
		close(t.cancel)
	}
	done := t.done
	t.active = nil
	t.cancel = nil
	t.done = nil
	return done
}

func (t *Timer) run(gen uint64, cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		if t.generation != gen || t.active == nil {
			t.mu.Unlock()
			return
		}
		t.active.RemainingTime--
		snapshot := *t.active
		expired := snapshot.RemainingTime <= 0
		if expired {
			t.active = nil
			t.cancel = nil
			t.done = nil
			t.expiring.Add(1)
		}
		t.mu.Unlock()

		if expired {
			t.expire(snapshot)
			return
		}
		t.onTick(snapshot)
	}
}

func (t *Timer) expire(at ActiveTimer) {
	defer t.expiring.Done()
	t.onExpire(at)
}

func waitDone(done chan struct{}) {
	if done != nil {
		<-done
	}
}
