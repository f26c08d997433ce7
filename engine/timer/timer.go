package timer

import (
	"time"

	"github.com/Carmen-Shannon/trackball/engine/signal"
)

// Timeout is emitted on a timer's bus each time its period elapses.
var Timeout = signal.NewSignal("timeout")

type timerImpl struct {
	id        signal.ID
	bus       *signal.Bus
	scheduler *schedulerImpl

	period     time.Duration
	singleShot bool
	active     bool
	deadline   time.Time

	// generation changes on every Start/Stop so that a pending fire collected before
	// a restart is dropped.
	generation uint64
	seq        uint64
}

// Timer is a periodic (or single-shot) tick source. Ticks are delivered through the Timeout
// event of the timer's bus, from the goroutine that polls the owning Scheduler.
type Timer interface {
	// ID returns the identity of the timer.
	//
	// Returns:
	//   - signal.ID: the timer identity
	ID() signal.ID

	// Signals returns the bus on which Timeout is emitted.
	//
	// Returns:
	//   - *signal.Bus: the timer's bus
	Signals() *signal.Bus

	// Start arms the timer. The first tick happens one period after now.
	// Starting an active timer restarts it with the new period.
	//
	// Parameters:
	//   - period: the tick period; negative values are treated as zero
	Start(period time.Duration)

	// Stop disarms the timer. No tick is delivered after Stop returns.
	Stop()

	// SetSingleShot configures whether the timer deactivates after its next tick.
	//
	// Parameters:
	//   - singleShot: true for a one-off tick
	SetSingleShot(singleShot bool)

	// IsSingleShot reports whether the timer deactivates after a tick.
	//
	// Returns:
	//   - bool: true for a one-off timer
	IsSingleShot() bool

	// IsActive reports whether the timer is armed.
	//
	// Returns:
	//   - bool: true while ticks are pending
	IsActive() bool

	// Period returns the period passed to the last Start.
	//
	// Returns:
	//   - time.Duration: the tick period
	Period() time.Duration
}

var _ Timer = &timerImpl{}

func (t *timerImpl) ID() signal.ID {
	return t.id
}

func (t *timerImpl) Signals() *signal.Bus {
	return t.bus
}

func (t *timerImpl) Start(period time.Duration) {
	if period < 0 {
		period = 0
	}
	s := t.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()
	t.period = period
	t.active = true
	t.generation++
	t.deadline = s.clock().Add(period)
	s.seq++
	t.seq = s.seq
	s.timers[t.id] = t
}

func (t *timerImpl) Stop() {
	s := t.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()
	t.active = false
	t.generation++
}

func (t *timerImpl) SetSingleShot(singleShot bool) {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	t.singleShot = singleShot
}

func (t *timerImpl) IsSingleShot() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	return t.singleShot
}

func (t *timerImpl) IsActive() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	return t.active
}

func (t *timerImpl) Period() time.Duration {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	return t.period
}
