package scheduler

import (
	"fmt"
	"sync"
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/errorsx"
)

// SchedulePeriodic runs action every period until the handle is disposed.
// Runs never overlap: the next one is armed after the previous returns. A
// zero period re-runs as fast as the queue allows while yielding between
// runs. A run that panics ends the schedule.
func (s *DefaultScheduler) SchedulePeriodic(period time.Duration, action Action) (disposable.Disposable, error) {
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}
	return s.SchedulePeriodicWithState(period, func(*PeriodicState) {
		action()
	})
}

// SchedulePeriodicWithState is SchedulePeriodic with access to the iteration
// count and due time. Setting state.Period changes the delay before the next
// run.
func (s *DefaultScheduler) SchedulePeriodicWithState(period time.Duration, action func(state *PeriodicState)) (disposable.Disposable, error) {
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}
	if period < 0 {
		return nil, errorsx.WrapInvalidArgument(fmt.Errorf("%w: %s", ErrNegativePeriod, period))
	}
	timers, ok := s.registry.Periodic()
	if !ok {
		return nil, errorsx.WrapUnsupported(fmt.Errorf("%s: %w", enlightenment.KindPeriodic, ErrNoProvider))
	}

	metrics := s.metrics
	metrics.ActionScheduled(KindPeriodic)

	timer := timers.StartPeriodicTimer(period, func(state *PeriodicState) {
		metrics.ActionStarted(KindPeriodic)
		start := time.Now()

		completed := false
		defer func() {
			if !completed {
				metrics.ActionFaulted(KindPeriodic)
			}
		}()

		action(state)
		completed = true
		metrics.ActionCompleted(KindPeriodic, time.Since(start))
	})

	return &periodicHandle{timer: timer, metrics: metrics}, nil
}

// periodicHandle reports disposed as soon as the timer ends, whether the
// caller disposed it, a run faulted or the work queue stopped.
type periodicHandle struct {
	timer   disposable.Disposable
	metrics MetricsCollector
	once    sync.Once
}

func (h *periodicHandle) Dispose() {
	h.once.Do(func() {
		if !h.timer.IsDisposed() {
			h.metrics.ActionCancelled(KindPeriodic)
		}
		h.timer.Dispose()
	})
}

func (h *periodicHandle) IsDisposed() bool {
	return h.timer.IsDisposed()
}
