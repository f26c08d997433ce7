package timer

import (
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/trackball/engine/signal"
)

type schedulerImpl struct {
	mu     *sync.Mutex
	clock  func() time.Time
	timers map[signal.ID]*timerImpl
	seq    uint64
}

// Scheduler owns a set of timers and delivers their ticks cooperatively.
// Nothing fires on its own: the owner of the event loop calls Poll, and every due timer
// emits Timeout from inside that call. All timer callbacks therefore run on the polling goroutine.
type Scheduler interface {
	// NewTimer creates an inactive repeating timer bound to this scheduler.
	//
	// Returns:
	//   - Timer: the new timer
	NewTimer() Timer

	// Remove stops the timer and forgets it.
	//
	// Parameters:
	//   - t: the timer to remove
	Remove(t Timer)

	// Now returns the scheduler's current time.
	//
	// Returns:
	//   - time.Time: the clock reading
	Now() time.Time

	// Poll fires every active timer whose deadline has passed, each at most once, in deadline order.
	// Repeating timers are rescheduled one period after their deadline, or one period after now
	// when they have fallen behind.
	//
	// Returns:
	//   - int: the number of ticks delivered
	Poll() int

	// NextDeadline returns the earliest deadline among active timers.
	//
	// Returns:
	//   - time.Time: the earliest deadline
	//   - bool: false when no timer is active
	NextDeadline() (time.Time, bool)

	// Len returns the number of timers known to the scheduler.
	//
	// Returns:
	//   - int: the number of registered timers
	Len() int
}

var _ Scheduler = &schedulerImpl{}

// NewScheduler creates a Scheduler using the wall clock unless WithClock is given.
//
// Parameters:
//   - options: functional options to configure the scheduler
//
// Returns:
//   - Scheduler: the newly created scheduler
func NewScheduler(options ...SchedulerBuilderOption) Scheduler {
	s := &schedulerImpl{
		mu:     &sync.Mutex{},
		clock:  time.Now,
		timers: make(map[signal.ID]*timerImpl),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *schedulerImpl) NewTimer() Timer {
	t := &timerImpl{
		id:        signal.NextID(),
		bus:       signal.NewBus(Timeout),
		scheduler: s,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[t.id] = t
	return t
}

func (s *schedulerImpl) Remove(t Timer) {
	if t == nil {
		return
	}
	t.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, t.ID())
}

func (s *schedulerImpl) Now() time.Time {
	return s.clock()
}

// pendingFire records a due timer together with the generation it was collected at.
type pendingFire struct {
	timer      *timerImpl
	generation uint64
	deadline   time.Time
	seq        uint64
}

func (s *schedulerImpl) Poll() int {
	s.mu.Lock()
	now := s.clock()
	var due []pendingFire
	for _, t := range s.timers {
		if t.active && !t.deadline.After(now) {
			due = append(due, pendingFire{timer: t, generation: t.generation, deadline: t.deadline, seq: t.seq})
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})

	fired := 0
	for _, p := range due {
		t := p.timer
		s.mu.Lock()
		if !t.active || t.generation != p.generation {
			s.mu.Unlock()
			continue
		}
		if t.singleShot {
			t.active = false
		} else {
			next := t.deadline.Add(t.period)
			if !next.After(now) {
				next = now.Add(t.period)
			}
			t.deadline = next
		}
		s.mu.Unlock()

		signal.Fire(t.bus, Timeout)
		fired++
	}
	return fired
}

func (s *schedulerImpl) NextDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var earliest time.Time
	found := false
	for _, t := range s.timers {
		if !t.active {
			continue
		}
		if !found || t.deadline.Before(earliest) {
			earliest = t.deadline
			found = true
		}
	}
	return earliest, found
}

func (s *schedulerImpl) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
