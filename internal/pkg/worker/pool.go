package worker

import (
	"rxcal/internal/pkg/logger"
)

// PoolConfig describes a Worker backed by a MemoryProvider
type PoolConfig struct {
	// Worker configuration
	Worker Config

	// MaxQueueLength bounds the queue; 0 means unbounded
	MaxQueueLength int

	// Enable default middlewares. Recovery is always installed.
	EnableLogging bool
	EnableMetrics bool
	EnableTracing bool
}

// DefaultPoolConfig returns a config with sensible defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Worker:        DefaultConfig(),
		EnableLogging: true,
		EnableMetrics: true,
		EnableTracing: true,
	}
}

// NewPool creates an in-memory worker with the default middleware stack. The
// returned collector is nil when metrics are disabled. The worker still has to
// be started.
func NewPool(config PoolConfig, log *logger.Logger) (*Worker, *MetricsCollector) {
	log = logger.OrNop(log)
	w := New(NewMemoryProvider(config.MaxQueueLength), config.Worker, log)

	var collector *MetricsCollector
	if config.EnableTracing {
		w.Use(TracingMiddleware())
	}
	if config.EnableLogging {
		w.Use(LoggingMiddleware(log))
	}
	if config.EnableMetrics {
		collector = NewMetricsCollector(log)
		w.metrics = collector
		w.Use(MetricsMiddleware(collector))
	}
	w.Use(RecoveryMiddleware(log))

	return w, collector
}
