package health

import (
	"context"
	"sync"
	"time"

	"rxcal/internal/pkg/scheduler"
)

// StatsSource exposes scheduler counters
type StatsSource interface {
	Stats() scheduler.Stats
}

// SchedulerProvider reports scheduler counters. It is DEGRADED when actions
// faulted since the previous check.
type SchedulerProvider struct {
	name   string
	source StatsSource

	mu         sync.Mutex
	lastFaults int64
}

// NewSchedulerProvider creates a health provider for a scheduler
func NewSchedulerProvider(name string, source StatsSource) *SchedulerProvider {
	return &SchedulerProvider{name: name, source: source}
}

// Name returns the name of the provider
func (p *SchedulerProvider) Name() string {
	return p.name
}

// Check performs the health check
func (p *SchedulerProvider) Check(ctx context.Context) HealthCheckResult {
	stats := p.source.Stats()
	result := HealthCheckResult{
		Name:   p.name,
		Status: StatusUp,
		Details: map[string]interface{}{
			"scheduled":           stats.Scheduled,
			"executed":            stats.Executed,
			"cancelled":           stats.Cancelled,
			"faulted":             stats.Faulted,
			"running":             stats.Running,
			"active_long_running": stats.ActiveLongRunning,
		},
		CheckedAt: time.Now(),
	}

	p.mu.Lock()
	newFaults := stats.Faulted - p.lastFaults
	p.lastFaults = stats.Faulted
	p.mu.Unlock()

	if newFaults > 0 {
		result.Status = StatusDegraded
		result.Details["reason"] = "actions faulted since last check"
		result.Details["new_faults"] = newFaults
	}
	return result
}
