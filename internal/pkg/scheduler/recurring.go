package scheduler

import (
	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/errorsx"

	"go.uber.org/zap"
)

// ScheduleRecurring runs action at the times produced by schedule. Each run
// is armed after the previous one returns, so runs never overlap, and a run
// that panics ends the schedule.
func (s *DefaultScheduler) ScheduleRecurring(schedule Schedule, action Action) (disposable.Disposable, error) {
	if schedule == nil {
		return nil, errorsx.ArgumentNull("schedule")
	}
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}

	r := &recurring{
		s:        s,
		schedule: schedule,
		action:   action,
		handle:   disposable.NewSerial(),
	}
	if err := r.arm(); err != nil {
		return nil, err
	}
	return r.handle, nil
}

type recurring struct {
	s        *DefaultScheduler
	schedule Schedule
	action   Action
	handle   *disposable.Serial
}

func (r *recurring) arm() error {
	if r.handle.IsDisposed() {
		return nil
	}
	next := r.schedule.NextRun(r.s.Now())
	if next.IsZero() {
		r.handle.Dispose()
		return nil
	}

	d, err := r.s.scheduleAfter(KindRecurring, next.Sub(r.s.Now()), r.fire)
	if err != nil {
		r.handle.Dispose()
		return err
	}
	r.handle.Set(d)
	return nil
}

func (r *recurring) fire() {
	if r.handle.IsDisposed() {
		return
	}
	r.action()

	if once, ok := r.schedule.(interface{ MarkRan() }); ok {
		once.MarkRan()
	}
	if err := r.arm(); err != nil {
		r.s.logger.Warn("Recurring schedule stopped",
			zap.Stringer("schedule", r.schedule),
			zap.Error(err),
		)
	}
}
