package health

import (
	"context"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusUp       HealthStatus = "UP"
	StatusDown     HealthStatus = "DOWN"
	StatusDegraded HealthStatus = "DEGRADED"
)

// severity orders statuses from best to worst
func (s HealthStatus) severity() int {
	switch s {
	case StatusUp:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// HealthCheckResult is the outcome of one provider check
type HealthCheckResult struct {
	Name      string                 `json:"name"`
	Status    HealthStatus           `json:"status"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CheckedAt time.Time              `json:"checked_at"`
	Duration  time.Duration          `json:"duration_ns"`
	Error     string                 `json:"error,omitempty"`
}

// HealthProvider checks one component
type HealthProvider interface {
	Name() string
	Check(ctx context.Context) HealthCheckResult
}

// AggregationStrategy defines how provider statuses combine
type AggregationStrategy string

const (
	// StrategyAll reports the worst status of any provider
	StrategyAll AggregationStrategy = "ALL"
	// StrategyAny is UP when at least one provider is UP
	StrategyAny AggregationStrategy = "ANY"
	// StrategyCritical reports the worst critical status; a non-critical
	// DOWN only degrades
	StrategyCritical AggregationStrategy = "CRITICAL"
)

// HealthResponse is the JSON body of the health endpoints
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    []HealthCheckResult    `json:"checks"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
