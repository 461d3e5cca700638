package health

import (
	"context"
	"time"

	"rxcal/internal/pkg/worker"
)

// WorkerHealthChecker is the view of a worker pool the provider needs.
// worker.Worker implements it.
type WorkerHealthChecker interface {
	IsRunning() bool
	// GetQueueLength returns the number of queued tasks, or -1 if unknown
	GetQueueLength() int
	// GetQueueCapacity returns the queue bound, or -1 when unbounded
	GetQueueCapacity() int
}

// TaskMetricsSource is implemented by pools that collect per-task metrics.
// The provider adds them to its details when the checker implements it.
type TaskMetricsSource interface {
	TaskMetrics() map[string]worker.TaskMetrics
}

// WorkerProviderConfig configures the worker health provider
type WorkerProviderConfig struct {
	Name    string
	Checker WorkerHealthChecker
	// MaxQueueLength marks the pool DOWN at this backlog; 0 falls back to
	// the queue capacity, and an unbounded queue is never checked
	MaxQueueLength int
	// DegradedQueueLength marks the pool DEGRADED; 0 means 80% of the limit
	DegradedQueueLength int
}

// WorkerProvider reports whether the pool runs and how far its backlog is
// from the limit
type WorkerProvider struct {
	config WorkerProviderConfig
}

// NewWorkerProvider creates a new worker health provider
func NewWorkerProvider(config WorkerProviderConfig) *WorkerProvider {
	return &WorkerProvider{config: config}
}

func (p *WorkerProvider) Name() string {
	return p.config.Name
}

func (p *WorkerProvider) limits() (max, degraded int) {
	max = p.config.MaxQueueLength
	if max <= 0 {
		max = p.config.Checker.GetQueueCapacity()
	}
	if max <= 0 {
		return 0, 0
	}
	degraded = p.config.DegradedQueueLength
	if degraded <= 0 {
		degraded = max * 8 / 10
	}
	return max, degraded
}

func (p *WorkerProvider) Check(ctx context.Context) HealthCheckResult {
	result := HealthCheckResult{
		Name:      p.config.Name,
		Status:    StatusUp,
		Details:   map[string]interface{}{"running": p.config.Checker.IsRunning()},
		CheckedAt: time.Now(),
	}
	if !p.config.Checker.IsRunning() {
		result.Status = StatusDown
		result.Error = "worker is not running"
		return result
	}

	if src, ok := p.config.Checker.(TaskMetricsSource); ok {
		if tasks := src.TaskMetrics(); tasks != nil {
			result.Details["tasks"] = tasks
		}
	}
	if sized, ok := p.config.Checker.(interface{ GetWorkerCount() int }); ok {
		result.Details["goroutines"] = sized.GetWorkerCount()
	}

	length := p.config.Checker.GetQueueLength()
	if capacity := p.config.Checker.GetQueueCapacity(); capacity > 0 {
		result.Details["queue_capacity"] = capacity
	}
	if length < 0 {
		return result
	}
	result.Details["queue_length"] = length

	max, degraded := p.limits()
	if max == 0 {
		return result
	}
	result.Details["queue_usage_percent"] = float64(length) / float64(max) * 100

	switch {
	case length >= max:
		result.Status = StatusDown
		result.Error = "queue is full"
	case length >= degraded:
		result.Status = StatusDegraded
		result.Details["reason"] = "queue length approaching limit"
	}
	return result
}
