package platform

import (
	"runtime"
	"sync/atomic"

	"rxcal/internal/pkg/errorsx"
	"rxcal/internal/pkg/logger"

	"go.uber.org/zap"
)

type dedicatedThreads struct {
	onFault FaultHandler
}

// NewDedicatedThreads returns the portable ThreadFactory. fn runs on a
// goroutine locked to its OS thread; the lock is never released, so the thread
// exits with fn instead of going back to the runtime's pool.
func NewDedicatedThreads(onFault FaultHandler) ThreadFactory {
	if onFault == nil {
		onFault = DefaultFaultHandler
	}
	return &dedicatedThreads{onFault: onFault}
}

func (t *dedicatedThreads) StartThread(fn func()) error {
	if fn == nil {
		return errorsx.ArgumentNull("fn")
	}
	go func() {
		runtime.LockOSThread()
		Guard(fn, t.onFault)
	}()
	return nil
}

// PinningSupported reports whether this build can set CPU affinity.
func PinningSupported() bool {
	return pinSupported
}

type pinnedThreads struct {
	numCPU  int
	next    atomic.Uint64
	onFault FaultHandler
	logger  *logger.Logger
}

// NewPinnedThreads returns a ThreadFactory that also pins every thread to one
// CPU, assigning CPUs round-robin. Pinning is best effort: a failure is logged
// and fn still runs on its dedicated thread.
func NewPinnedThreads(numCPU int, onFault FaultHandler, log *logger.Logger) (ThreadFactory, error) {
	if !pinSupported {
		return nil, errorsx.WrapUnsupported(errPinUnavailable)
	}
	if numCPU < 1 {
		numCPU = runtime.NumCPU()
	}
	if onFault == nil {
		onFault = DefaultFaultHandler
	}
	return &pinnedThreads{
		numCPU:  numCPU,
		onFault: onFault,
		logger:  logger.OrNop(log),
	}, nil
}

func (t *pinnedThreads) StartThread(fn func()) error {
	if fn == nil {
		return errorsx.ArgumentNull("fn")
	}
	cpu := int((t.next.Add(1) - 1) % uint64(t.numCPU))
	go func() {
		runtime.LockOSThread()
		if err := pinCurrentThread(cpu); err != nil {
			t.logger.Warn("Failed to pin thread", zap.Int("cpu", cpu), zap.Error(err))
		}
		Guard(fn, t.onFault)
	}()
	return nil
}
