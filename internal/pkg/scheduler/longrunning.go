package scheduler

import (
	"fmt"
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/errorsx"

	"go.uber.org/zap"
)

// ScheduleLongRunning runs action(state, cancel) once on a dedicated thread.
// The handle returned is the same one passed as cancel. Disposing it only
// flags cancellation; the action decides when to return.
func (s *DefaultScheduler) ScheduleLongRunning(state any, action LongRunningAction) (disposable.Disposable, error) {
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}
	threads, ok := s.registry.Threads()
	if !ok {
		return nil, errorsx.WrapUnsupported(fmt.Errorf("%s: %w", enlightenment.KindLongRunning, ErrNoProvider))
	}

	cancel := disposable.NewBoolean()
	metrics := s.metrics
	metrics.ActionScheduled(KindLongRunning)

	err := threads.StartThread(func() {
		metrics.ActionStarted(KindLongRunning)
		start := time.Now()
		s.logger.Debug("Long-running action started")

		completed := false
		defer func() {
			if !completed {
				metrics.ActionFaulted(KindLongRunning)
				return
			}
			metrics.ActionCompleted(KindLongRunning, time.Since(start))
			s.logger.Debug("Long-running action finished",
				zap.Duration("duration", time.Since(start)),
				zap.Bool("cancelled", cancel.IsDisposed()),
			)
		}()

		action(state, cancel)
		completed = true
	})
	if err != nil {
		return nil, fmt.Errorf("start dedicated thread: %w", err)
	}
	return cancel, nil
}
