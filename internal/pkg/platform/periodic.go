package platform

import (
	"errors"
	"runtime"
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/logger"

	"go.uber.org/zap"
)

// minRetryDelay spaces out retries of a zero-period tick the queue rejected
const minRetryDelay = time.Millisecond

type rearmingPeriodic struct {
	queue  WorkQueue
	clock  Clock
	logger *logger.Logger
}

// NewPeriodicTimers builds periodic timers from a work queue and a clock. The
// next firing is armed only after the previous tick returns, so ticks of one
// timer never overlap. A tick that panics stops the timer. A tick the queue
// rejects is skipped and retried one period later, unless the queue has
// stopped for good.
func NewPeriodicTimers(queue WorkQueue, clock Clock, log *logger.Logger) PeriodicTimerFactory {
	return &rearmingPeriodic{queue: queue, clock: clock, logger: logger.OrNop(log)}
}

func (p *rearmingPeriodic) StartPeriodicTimer(period time.Duration, tick func(state *PeriodicState)) disposable.Disposable {
	r := &periodicRun{
		queue:  p.queue,
		clock:  p.clock,
		logger: p.logger,
		tick:   tick,
		handle: disposable.NewSerial(),
	}
	r.state.Period = period
	r.arm()
	return r.handle
}

// periodicRun owns the state of one periodic timer. state is touched only by
// arm and fire, which never run concurrently.
type periodicRun struct {
	queue  WorkQueue
	clock  Clock
	logger *logger.Logger
	tick   func(state *PeriodicState)
	handle *disposable.Serial
	state  PeriodicState
}

func (r *periodicRun) arm() {
	if r.handle.IsDisposed() {
		return
	}

	period := r.state.Period
	if period < 0 {
		period = 0
	}
	r.state.NextDue = r.clock.Now().Add(period)

	if period == 0 {
		// Yield and go to the back of the queue instead of spinning.
		runtime.Gosched()
		r.enqueue()
		return
	}
	r.handle.Set(r.clock.StartTimer(r.enqueue, period))
}

func (r *periodicRun) enqueue() {
	if r.handle.IsDisposed() {
		return
	}
	err := QueueNamed(r.queue, "periodic", r.fire)
	if err == nil {
		return
	}
	if errors.Is(err, ErrQueueStopped) {
		r.logger.Warn("Stopping periodic timer, work queue stopped", zap.Error(err))
		r.handle.Dispose()
		return
	}

	retry := r.state.Period
	if retry < minRetryDelay {
		retry = minRetryDelay
	}
	r.logger.Warn("Skipping periodic tick, work queue rejected it",
		zap.Int64("iteration", r.state.Iteration),
		zap.Duration("retry_in", retry),
		zap.Error(err),
	)
	r.handle.Set(r.clock.StartTimer(r.enqueue, retry))
}

func (r *periodicRun) fire() {
	if r.handle.IsDisposed() {
		return
	}

	completed := false
	defer func() {
		if !completed {
			r.handle.Dispose()
		}
	}()

	r.state.Iteration++
	r.tick(&r.state)
	completed = true

	r.arm()
}
