// Package scheduler is the scheduling core. Every call returns a
// disposable.Disposable immediately; execution happens asynchronously on
// primitives chosen by an enlightenment.Registry.
//
// Cancellation is cooperative. Disposing a handle stops future executions of
// the action but never interrupts one that has already started.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/errorsx"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/platform"

	"go.uber.org/zap"
)

// Action is a unit of scheduled work.
type Action func()

// Scheduler is the contract every scheduler satisfies. Optional features are
// reached through Capability.
type Scheduler interface {
	Now() time.Time
	Schedule(action Action) (disposable.Disposable, error)
	ScheduleAfter(dueTime time.Duration, action Action) (disposable.Disposable, error)
	ScheduleAt(dueTime time.Time, action Action) (disposable.Disposable, error)
	Capability(c Capability) (any, bool)
}

// DefaultScheduler runs actions on the registry's work queue.
type DefaultScheduler struct {
	registry  *enlightenment.Registry
	queueKind enlightenment.Kind
	logger    *logger.Logger
	metrics   MetricsCollector
	stats     *counters
}

// Option configures a DefaultScheduler.
type Option func(*DefaultScheduler)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *DefaultScheduler) {
		s.logger = logger.OrNop(log)
	}
}

// WithMetrics adds a collector next to the built-in counters.
func WithMetrics(m MetricsCollector) Option {
	return func(s *DefaultScheduler) {
		if m != nil {
			s.metrics = fanout{s.stats, m}
		}
	}
}

// New creates a scheduler over registry. A nil registry means
// enlightenment.Default().
func New(registry *enlightenment.Registry, opts ...Option) *DefaultScheduler {
	return newScheduler(registry, enlightenment.KindWorkQueue, opts...)
}

func newScheduler(registry *enlightenment.Registry, queueKind enlightenment.Kind, opts ...Option) *DefaultScheduler {
	if registry == nil {
		registry = enlightenment.Default()
	}
	stats := &counters{}
	s := &DefaultScheduler{
		registry:  registry,
		queueKind: queueKind,
		logger:    logger.NewNop(),
		metrics:   stats,
		stats:     stats,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScheduler = sync.OnceValue(func() *DefaultScheduler {
	return New(enlightenment.Default())
})

// Default returns the process-wide scheduler backed by enlightenment.Default().
func Default() *DefaultScheduler {
	return defaultScheduler()
}

// Now returns the scheduler's notion of the current time.
func (s *DefaultScheduler) Now() time.Time {
	if clock, ok := s.registry.Clock(); ok {
		return clock.Now()
	}
	return time.Now()
}

// Schedule runs action as soon as a worker is free.
func (s *DefaultScheduler) Schedule(action Action) (disposable.Disposable, error) {
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}
	queue, err := s.queue()
	if err != nil {
		return nil, err
	}

	a := s.newAction(KindImmediate, action)
	s.metrics.ActionScheduled(KindImmediate)
	if err := platform.QueueNamed(queue, string(a.kind), a.invoke); err != nil {
		a.handle.Dispose()
		return nil, fmt.Errorf("queue action: %w", err)
	}
	return a.handle, nil
}

// ScheduleAfter runs action once dueTime has passed. Negative due times are
// treated as zero; a zero due time still goes through a timer.
func (s *DefaultScheduler) ScheduleAfter(dueTime time.Duration, action Action) (disposable.Disposable, error) {
	h, err := s.scheduleAfter(KindDelayed, dueTime, action)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ScheduleAt runs action at or after dueTime. Past times run as soon as
// possible.
func (s *DefaultScheduler) ScheduleAt(dueTime time.Time, action Action) (disposable.Disposable, error) {
	return s.ScheduleAfter(dueTime.Sub(s.Now()), action)
}

func (s *DefaultScheduler) scheduleAfter(kind ActionKind, dueTime time.Duration, action Action) (*disposable.Composite, error) {
	if action == nil {
		return nil, errorsx.ArgumentNull("action")
	}
	queue, err := s.queue()
	if err != nil {
		return nil, err
	}
	clock, err := s.clock()
	if err != nil {
		return nil, err
	}
	if dueTime < 0 {
		dueTime = 0
	}

	a := s.newAction(kind, action)
	s.metrics.ActionScheduled(kind)
	a.handle.Add(clock.StartTimer(func() { s.dispatch(queue, a) }, dueTime))
	return a.handle, nil
}

// dispatch moves a due action from the timer onto the work queue.
func (s *DefaultScheduler) dispatch(queue platform.WorkQueue, a *scheduledAction) {
	if a.handle.IsDisposed() {
		return
	}
	if err := platform.QueueNamed(queue, string(a.kind), a.invoke); err != nil {
		s.logger.Warn("Dropping due action, work queue rejected it",
			zap.String("action_id", a.id),
			zap.Error(err),
		)
		a.handle.Dispose()
	}
}

// StartStopwatch starts a monotonic stopwatch. It falls back to the portable
// stopwatch when the registry has none.
func (s *DefaultScheduler) StartStopwatch() Stopwatch {
	if f, ok := s.registry.Stopwatches(); ok {
		return f.StartStopwatch()
	}
	return platform.NewStopwatch()
}

// Stats returns a snapshot of the scheduler's counters.
func (s *DefaultScheduler) Stats() Stats {
	return s.stats.snapshot()
}

// Registry returns the registry backing the scheduler.
func (s *DefaultScheduler) Registry() *enlightenment.Registry {
	return s.registry
}

func (s *DefaultScheduler) queue() (platform.WorkQueue, error) {
	v, ok := s.registry.GetCapability(s.queueKind)
	if q, isQueue := v.(platform.WorkQueue); ok && isQueue {
		return q, nil
	}
	return nil, errorsx.WrapUnsupported(fmt.Errorf("%s: %w", s.queueKind, ErrNoProvider))
}

func (s *DefaultScheduler) clock() (platform.Clock, error) {
	if clock, ok := s.registry.Clock(); ok {
		return clock, nil
	}
	return nil, errorsx.WrapUnsupported(fmt.Errorf("%s: %w", enlightenment.KindTimer, ErrNoProvider))
}
