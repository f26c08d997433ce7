package timer

import "time"

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*schedulerImpl)

// WithClock replaces the wall clock used to compute deadlines.
// Tests use it to drive timers deterministically.
//
// Parameters:
//   - clock: function returning the current time
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithClock(clock func() time.Time) SchedulerBuilderOption {
	return func(s *schedulerImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}
