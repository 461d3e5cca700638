package scheduler

import (
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/errorsx"
	"rxcal/internal/pkg/platform"
)

// ImmediateScheduler runs every action on the calling goroutine before
// returning. Delayed actions block the caller for the due time.
type ImmediateScheduler struct {
	clock platform.Clock
}

// Immediate returns an ImmediateScheduler using the default registry's clock.
func Immediate() *ImmediateScheduler {
	return NewImmediate(enlightenment.Default())
}

// NewImmediate returns an ImmediateScheduler using registry's clock, or the
// system clock when the registry has none.
func NewImmediate(registry *enlightenment.Registry) *ImmediateScheduler {
	clock, ok := registry.Clock()
	if !ok {
		clock = platform.NewSystemClock()
	}
	return &ImmediateScheduler{clock: clock}
}

func (s *ImmediateScheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule runs action and returns an already disposed handle.
func (s *ImmediateScheduler) Schedule(action Action) (disposable.Disposable, error) {
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}
	action()
	return disposable.Empty(), nil
}

// ScheduleAfter sleeps for dueTime and then runs action.
func (s *ImmediateScheduler) ScheduleAfter(dueTime time.Duration, action Action) (disposable.Disposable, error) {
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}
	s.clock.Sleep(dueTime)
	action()
	return disposable.Empty(), nil
}

func (s *ImmediateScheduler) ScheduleAt(dueTime time.Time, action Action) (disposable.Disposable, error) {
	return s.ScheduleAfter(dueTime.Sub(s.Now()), action)
}

// Capability only offers the stopwatch; periodic and long-running work cannot
// run inline.
func (s *ImmediateScheduler) Capability(c Capability) (any, bool) {
	if c == CapabilityStopwatch {
		return StopwatchProvider(s), true
	}
	return nil, false
}

func (s *ImmediateScheduler) StartStopwatch() Stopwatch {
	return platform.NewStopwatch()
}
