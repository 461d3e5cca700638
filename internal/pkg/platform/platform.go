// Package platform holds the primitive building blocks the scheduler core is
// assembled from: a work queue, a clock with one-shot timers, periodic timers,
// dedicated threads and stopwatches. Each primitive has a portable default;
// specialized variants are selected by the enlightenment registry.
package platform

import (
	"errors"
	"runtime/debug"
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/errorsx"
)

// FaultHandler receives an *errorsx.FaultError when a unit of work panics.
type FaultHandler func(err error)

// DefaultFaultHandler re-raises the fault, crashing the process the same way an
// unrecovered panic in a plain goroutine would.
func DefaultFaultHandler(err error) {
	panic(err)
}

// ErrQueueStopped marks QueueWork errors from a queue that will never accept
// work again. Other QueueWork errors are transient.
var ErrQueueStopped = errors.New("work queue stopped")

// WorkQueue runs work items on a shared worker, in submission order where the
// implementation allows it.
type WorkQueue interface {
	QueueWork(fn func()) error
}

// NamedWorkQueue is a WorkQueue that can label work items for its metrics
type NamedWorkQueue interface {
	WorkQueue
	QueueNamedWork(name string, fn func()) error
}

// QueueNamed queues fn under name when q supports labels, and plainly otherwise.
func QueueNamed(q WorkQueue, name string, fn func()) error {
	if nq, ok := q.(NamedWorkQueue); ok {
		return nq.QueueNamedWork(name, fn)
	}
	return q.QueueWork(fn)
}

// Clock supplies the current time, blocking sleeps and one-shot timers.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
	StartTimer(fn func(), dueTime time.Duration) disposable.Disposable
}

// PeriodicState is handed to every periodic tick. Ticks may change Period to
// adjust the delay before the next firing.
type PeriodicState struct {
	Iteration int64
	Period    time.Duration
	NextDue   time.Time
}

// PeriodicTimerFactory starts timers that fire repeatedly without overlapping.
type PeriodicTimerFactory interface {
	StartPeriodicTimer(period time.Duration, tick func(state *PeriodicState)) disposable.Disposable
}

// ThreadFactory runs fn on an OS thread that is not shared with other work.
type ThreadFactory interface {
	StartThread(fn func()) error
}

// Stopwatch measures elapsed time from a monotonic source.
type Stopwatch interface {
	Elapsed() time.Duration
}

// StopwatchFactory starts new stopwatches.
type StopwatchFactory interface {
	StartStopwatch() Stopwatch
}

// Guard runs fn and routes a panic to onFault as an *errorsx.FaultError.
// A nil onFault re-panics.
func Guard(fn func(), onFault FaultHandler) {
	defer func() {
		if r := recover(); r != nil {
			err := &errorsx.FaultError{Value: r, Stack: debug.Stack()}
			if onFault == nil {
				panic(err)
			}
			onFault(err)
		}
	}()
	fn()
}
