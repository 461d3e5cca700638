package platform

import (
	"rxcal/internal/pkg/errorsx"
)

// goroutineQueue hands every item to the Go runtime scheduler.
type goroutineQueue struct {
	onFault FaultHandler
}

// NewGoroutineQueue returns the portable WorkQueue. Each item runs on its own
// goroutine; the runtime scheduler acts as the shared worker.
func NewGoroutineQueue(onFault FaultHandler) WorkQueue {
	if onFault == nil {
		onFault = DefaultFaultHandler
	}
	return &goroutineQueue{onFault: onFault}
}

func (q *goroutineQueue) QueueWork(fn func()) error {
	if fn == nil {
		return errorsx.ArgumentNull("fn")
	}
	go Guard(fn, q.onFault)
	return nil
}
