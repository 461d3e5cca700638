package worker

import (
	"context"
	"errors"
	"fmt"

	"rxcal/internal/pkg/platform"
)

var (
	// ErrProviderClosed is returned once a provider has been closed
	ErrProviderClosed = fmt.Errorf("worker: provider closed: %w", platform.ErrQueueStopped)

	// ErrQueueFull is returned by Push when a bounded queue is at capacity
	ErrQueueFull = errors.New("worker: queue full")
)

// Provider defines the interface for task queue providers
type Provider interface {
	// Push appends a task to the tail of the queue
	Push(task *Task) error

	// Fetch blocks until a task is available, ctx is done or the provider is closed
	Fetch(ctx context.Context) (*Task, error)

	// Len returns the number of queued tasks
	Len() int

	// Cap returns the maximum queue length, or -1 when unbounded
	Cap() int

	// Close cleans up provider resources. Queued tasks are dropped.
	Close() error
}
