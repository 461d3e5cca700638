package scheduler

import (
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/logger"

	"go.uber.org/fx"
)

// Module provides scheduler dependencies for fx.
var Module = fx.Module("scheduler",
	fx.Provide(NewFromRegistry),
)

// Params holds dependencies for creating a scheduler.
type Params struct {
	fx.In

	Registry *enlightenment.Registry
	Logger   *logger.Logger
	Metrics  MetricsCollector `optional:"true"`
}

// NewFromRegistry creates the application scheduler.
func NewFromRegistry(p Params) *DefaultScheduler {
	return New(p.Registry,
		WithLogger(p.Logger.Named("scheduler")),
		WithMetrics(p.Metrics),
	)
}
