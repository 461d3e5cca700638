package worker

import (
	"time"
)

// Task is one unit of work queued on a Worker
type Task struct {
	// ID identifies the task in logs
	ID string

	// Name groups tasks for metrics, e.g. "schedule" or "periodic"
	Name string

	// Run is the work itself
	Run func()

	// EnqueuedAt is set by Submit
	EnqueuedAt time.Time
}

// Wait returns how long the task sat in the queue
func (t *Task) Wait() time.Duration {
	if t.EnqueuedAt.IsZero() {
		return 0
	}
	return time.Since(t.EnqueuedAt)
}
