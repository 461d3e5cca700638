package scheduler

import (
	"rxcal/internal/pkg/enlightenment"
)

// TaskPool returns a scheduler that queues work on the registry's task pool
// instead of the shared work queue. The task pool has no portable default:
// when the registry has no task pool provider every scheduling call fails
// with an error for which errorsx.IsUnsupported is true.
func TaskPool(registry *enlightenment.Registry, opts ...Option) *DefaultScheduler {
	return newScheduler(registry, enlightenment.KindTaskPool, opts...)
}
