package scheduler

import (
	"sync/atomic"
	"time"

	"rxcal/internal/pkg/disposable"

	"github.com/google/uuid"
)

// ActionStatus represents the current state of a one-shot action.
type ActionStatus int32

const (
	StatusPending ActionStatus = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
	StatusFaulted
)

func (s ActionStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// scheduledAction is one submission of a one-shot action. The status moves
// from pending to running exactly once, or from pending to cancelled; the
// compare-and-swap between the two is what guarantees a disposed action
// never starts.
type scheduledAction struct {
	id     string
	kind   ActionKind
	action Action
	status atomic.Int32
	handle *disposable.Composite
	s      *DefaultScheduler
}

func (s *DefaultScheduler) newAction(kind ActionKind, action Action) *scheduledAction {
	a := &scheduledAction{
		id:     uuid.NewString(),
		kind:   kind,
		action: action,
		s:      s,
	}
	a.handle = disposable.NewComposite(disposable.NewFunc(a.cancel))
	return a
}

func (a *scheduledAction) Status() ActionStatus {
	return ActionStatus(a.status.Load())
}

func (a *scheduledAction) cancel() {
	if a.status.CompareAndSwap(int32(StatusPending), int32(StatusCancelled)) {
		a.s.metrics.ActionCancelled(a.kind)
	}
}

func (a *scheduledAction) invoke() {
	if a.handle.IsDisposed() {
		return
	}
	if !a.status.CompareAndSwap(int32(StatusPending), int32(StatusRunning)) {
		return
	}

	metrics := a.s.metrics
	metrics.ActionStarted(a.kind)
	start := time.Now()

	defer func() {
		// Still running here means the action panicked; the panic keeps
		// unwinding to the work queue's fault handler.
		if a.status.CompareAndSwap(int32(StatusRunning), int32(StatusFaulted)) {
			metrics.ActionFaulted(a.kind)
			a.handle.Dispose()
		}
	}()

	a.action()

	a.status.Store(int32(StatusCompleted))
	metrics.ActionCompleted(a.kind, time.Since(start))
	a.handle.Dispose()
}
