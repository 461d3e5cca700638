package worker

import (
	"context"
	"sync"
	"time"

	"rxcal/internal/pkg/errorsx"
	"rxcal/internal/pkg/logger"

	"go.uber.org/zap"
)

// Task outcomes recorded by MetricsMiddleware
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFault   = "fault"
)

// TaskMetrics summarizes the tasks that ran under one name
type TaskMetrics struct {
	Success         int64         `json:"success"`
	Error           int64         `json:"error"`
	Fault           int64         `json:"fault"`
	AverageDuration time.Duration `json:"average_duration_ns"`
}

type taskTotals struct {
	counts map[string]int64
	total  time.Duration
	runs   int64
}

// MetricsCollector keeps per-name outcome counts and run time totals
type MetricsCollector struct {
	mu     sync.RWMutex
	tasks  map[string]*taskTotals
	logger *logger.Logger
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(log *logger.Logger) *MetricsCollector {
	return &MetricsCollector{
		tasks:  make(map[string]*taskTotals),
		logger: logger.OrNop(log),
	}
}

// RecordTask records one finished task
func (mc *MetricsCollector) RecordTask(taskName, status string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	t := mc.tasks[taskName]
	if t == nil {
		t = &taskTotals{counts: make(map[string]int64)}
		mc.tasks[taskName] = t
	}
	t.counts[status]++
	t.total += duration
	t.runs++
}

// Count returns how many tasks with the given name ended in status
func (mc *MetricsCollector) Count(taskName, status string) int64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if t := mc.tasks[taskName]; t != nil {
		return t.counts[status]
	}
	return 0
}

// AverageDuration returns the mean run time of tasks named taskName
func (mc *MetricsCollector) AverageDuration(taskName string) time.Duration {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	t := mc.tasks[taskName]
	if t == nil || t.runs == 0 {
		return 0
	}
	return t.total / time.Duration(t.runs)
}

// Snapshot returns the metrics of every task name seen so far
func (mc *MetricsCollector) Snapshot() map[string]TaskMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make(map[string]TaskMetrics, len(mc.tasks))
	for name, t := range mc.tasks {
		m := TaskMetrics{
			Success: t.counts[StatusSuccess],
			Error:   t.counts[StatusError],
			Fault:   t.counts[StatusFault],
		}
		if t.runs > 0 {
			m.AverageDuration = t.total / time.Duration(t.runs)
		}
		out[name] = m
	}
	return out
}

// LogMetrics logs one line per task name
func (mc *MetricsCollector) LogMetrics() {
	for name, m := range mc.Snapshot() {
		mc.logger.Info("Task metrics",
			zap.String("task_name", name),
			zap.Int64("success", m.Success),
			zap.Int64("error", m.Error),
			zap.Int64("fault", m.Fault),
			zap.Duration("average_duration", m.AverageDuration),
		)
	}
}

// MetricsMiddleware creates a middleware that collects basic metrics
func MetricsMiddleware(collector *MetricsCollector) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, task *Task) error {
			taskName := task.Name
			if taskName == "" {
				taskName = "unknown"
			}

			start := time.Now()
			err := next.Process(ctx, task)
			duration := time.Since(start)

			status := StatusSuccess
			switch {
			case errorsx.IsFault(err):
				status = StatusFault
			case err != nil:
				status = StatusError
			}

			collector.RecordTask(taskName, status, duration)

			return err
		})
	}
}
