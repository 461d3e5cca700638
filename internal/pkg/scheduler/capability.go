package scheduler

import (
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/platform"
)

// Capability names an optional scheduler feature.
type Capability int

const (
	CapabilityPeriodic Capability = iota + 1
	CapabilityLongRunning
	CapabilityStopwatch
)

func (c Capability) String() string {
	switch c {
	case CapabilityPeriodic:
		return "periodic"
	case CapabilityLongRunning:
		return "long-running"
	case CapabilityStopwatch:
		return "stopwatch"
	default:
		return "unknown"
	}
}

// Capabilities lists every capability.
func Capabilities() []Capability {
	return []Capability{CapabilityPeriodic, CapabilityLongRunning, CapabilityStopwatch}
}

type (
	// PeriodicState is handed to stateful periodic actions.
	PeriodicState = platform.PeriodicState
	// Stopwatch measures elapsed time on a monotonic clock.
	Stopwatch = platform.Stopwatch
)

// LongRunningAction runs on a dedicated thread and should return soon after
// cancel reports disposed.
type LongRunningAction func(state any, cancel disposable.Disposable)

// PeriodicScheduler re-runs an action until its handle is disposed.
type PeriodicScheduler interface {
	SchedulePeriodic(period time.Duration, action Action) (disposable.Disposable, error)
	SchedulePeriodicWithState(period time.Duration, action func(state *PeriodicState)) (disposable.Disposable, error)
}

// LongRunningScheduler runs work on threads that are not shared.
type LongRunningScheduler interface {
	ScheduleLongRunning(state any, action LongRunningAction) (disposable.Disposable, error)
}

// StopwatchProvider starts monotonic stopwatches.
type StopwatchProvider interface {
	StartStopwatch() Stopwatch
}

// AsPeriodic returns s's periodic capability.
func AsPeriodic(s Scheduler) (PeriodicScheduler, bool) {
	return as[PeriodicScheduler](s, CapabilityPeriodic)
}

// AsLongRunning returns s's long-running capability.
func AsLongRunning(s Scheduler) (LongRunningScheduler, bool) {
	return as[LongRunningScheduler](s, CapabilityLongRunning)
}

// AsStopwatch returns s's stopwatch capability.
func AsStopwatch(s Scheduler) (StopwatchProvider, bool) {
	return as[StopwatchProvider](s, CapabilityStopwatch)
}

func as[T any](s Scheduler, c Capability) (T, bool) {
	var zero T
	v, ok := s.Capability(c)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Capability returns the scheduler as the requested capability interface when
// the registry can back it.
func (s *DefaultScheduler) Capability(c Capability) (any, bool) {
	switch c {
	case CapabilityPeriodic:
		if _, ok := s.registry.Periodic(); ok {
			return PeriodicScheduler(s), true
		}
	case CapabilityLongRunning:
		if _, ok := s.registry.Threads(); ok {
			return LongRunningScheduler(s), true
		}
	case CapabilityStopwatch:
		if _, ok := s.registry.Stopwatches(); ok {
			return StopwatchProvider(s), true
		}
	}
	return nil, false
}

var (
	_ Scheduler            = (*DefaultScheduler)(nil)
	_ PeriodicScheduler    = (*DefaultScheduler)(nil)
	_ LongRunningScheduler = (*DefaultScheduler)(nil)
	_ StopwatchProvider    = (*DefaultScheduler)(nil)
	_ Scheduler            = (*ImmediateScheduler)(nil)
	_ StopwatchProvider    = (*ImmediateScheduler)(nil)
)
