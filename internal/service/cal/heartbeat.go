package cal

import (
	"context"
	"sync/atomic"
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/scheduler"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	heartbeatInterval = 10 * time.Second
	statsSchedule     = "@every 1m"
)

// Heartbeat logs a periodic beat with the measured drift and a minutely
// summary of scheduler counters.
type Heartbeat struct {
	scheduler *scheduler.DefaultScheduler
	logger    *logger.Logger
	interval  time.Duration

	beats  atomic.Int64
	handle *disposable.Composite
}

// NewHeartbeat creates a heartbeat on sched
func NewHeartbeat(sched *scheduler.DefaultScheduler, log *logger.Logger) *Heartbeat {
	return &Heartbeat{
		scheduler: sched,
		logger:    log.Named("heartbeat"),
		interval:  heartbeatInterval,
	}
}

// Start schedules the beat and the stats report.
func (h *Heartbeat) Start() error {
	sw := h.scheduler.StartStopwatch()

	beat, err := h.scheduler.SchedulePeriodicWithState(h.interval, func(state *scheduler.PeriodicState) {
		n := h.beats.Add(1)
		elapsed := sw.Elapsed()
		h.logger.Debug("Heartbeat",
			zap.Int64("beat", n),
			zap.Int64("iteration", state.Iteration),
			zap.Duration("elapsed", elapsed),
			zap.Duration("drift", elapsed-time.Duration(n)*h.interval),
		)
	})
	if err != nil {
		return err
	}

	schedule, err := scheduler.NewCronSchedule(statsSchedule)
	if err != nil {
		beat.Dispose()
		return err
	}
	report, err := h.scheduler.ScheduleRecurring(schedule, func() {
		stats := h.scheduler.Stats()
		h.logger.Info("Scheduler stats",
			zap.Int64("scheduled", stats.Scheduled),
			zap.Int64("executed", stats.Executed),
			zap.Int64("cancelled", stats.Cancelled),
			zap.Int64("faulted", stats.Faulted),
			zap.Int64("running", stats.Running),
		)
		if queue, ok := h.scheduler.Registry().WorkQueue(); ok {
			if m, ok := queue.(interface{ LogMetrics() }); ok {
				m.LogMetrics()
			}
		}
	})
	if err != nil {
		beat.Dispose()
		return err
	}

	h.handle = disposable.NewComposite(beat, report)
	return nil
}

// Stop cancels both schedules
func (h *Heartbeat) Stop() {
	if h.handle != nil {
		h.handle.Dispose()
	}
}

// Beats returns how many beats fired
func (h *Heartbeat) Beats() int64 {
	return h.beats.Load()
}

func registerHeartbeat(lc fx.Lifecycle, h *Heartbeat, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := h.Start(); err != nil {
				return err
			}
			log.Info("Heartbeat started", zap.Duration("interval", h.interval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			h.Stop()
			log.Info("Heartbeat stopped", zap.Int64("beats", h.Beats()))
			return nil
		},
	})
}
