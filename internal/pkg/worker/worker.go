package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"rxcal/internal/pkg/errorsx"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/platform"
	"rxcal/internal/pkg/retry"

	"go.uber.org/zap"
)

// maxErrorBackoff caps the delay between failed fetches
const maxErrorBackoff = 5 * time.Second

// ErrNotRunning is returned when work is submitted to a stopped worker
var ErrNotRunning = fmt.Errorf("worker: not running: %w", platform.ErrQueueStopped)

// Worker runs queued tasks on a set of goroutines. The set starts at
// Concurrency and grows by one whenever a task is queued while no goroutine is
// idle, so tasks that block never starve the ones queued behind them.
type Worker struct {
	provider    Provider
	middlewares []Middleware
	handler     Handler
	metrics     *MetricsCollector
	config      Config
	logger      *logger.Logger
	wg          sync.WaitGroup
	stopCh      chan struct{}
	cancel      context.CancelFunc
	runCtx      context.Context
	running     atomic.Bool
	seq         atomic.Uint64
	total       atomic.Int32
	idle        atomic.Int32
	mu          sync.RWMutex
}

// New creates a new Worker instance
func New(provider Provider, config Config, log *logger.Logger) *Worker {
	defaults := DefaultConfig()
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.ErrorBackoff <= 0 {
		config.ErrorBackoff = defaults.ErrorBackoff
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}

	return &Worker{
		provider:    provider,
		middlewares: []Middleware{},
		config:      config,
		logger:      logger.OrNop(log),
		stopCh:      make(chan struct{}),
	}
}

// Use adds a middleware to the worker. Middlewares added after Start are ignored.
func (w *Worker) Use(mw Middleware) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.middlewares = append(w.middlewares, mw)
}

// Start launches the worker goroutines and returns immediately. The worker
// runs until Stop is called or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopCh:
		return fmt.Errorf("worker: cannot restart a stopped worker")
	default:
	}
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("worker: already started")
	}

	w.handler = runHandler
	if len(w.middlewares) > 0 {
		w.handler = Chain(w.middlewares...)(runHandler)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.runCtx = runCtx

	w.logger.Info("Starting worker",
		zap.Int("concurrency", w.config.Concurrency),
		zap.Int("max_concurrency", w.config.MaxConcurrency),
	)
	for i := 0; i < w.config.Concurrency; i++ {
		w.spawn(runCtx, false)
	}

	go func() {
		select {
		case <-runCtx.Done():
		case <-w.stopCh:
			return
		}
		w.running.Store(false)
	}()

	return nil
}

// Stop gracefully stops the worker. Tasks still queued are dropped; running
// tasks are waited for until ctx or the shutdown timeout expires.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	select {
	case <-w.stopCh:
		w.mu.Unlock()
		return nil
	default:
		close(w.stopCh)
	}
	cancel := w.cancel
	w.mu.Unlock()

	w.running.Store(false)
	if cancel != nil {
		cancel()
	}
	if err := w.provider.Close(); err != nil {
		w.logger.Error("Failed to close provider", zap.Error(err))
	}

	ctx, stop := context.WithTimeout(ctx, w.config.ShutdownTimeout)
	defer stop()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Worker shutdown timeout exceeded")
		return ctx.Err()
	}
}

// QueueWork submits fn as a task named "work"
func (w *Worker) QueueWork(fn func()) error {
	return w.QueueNamedWork("work", fn)
}

// QueueNamedWork submits fn as a task named name. Metrics and logs group
// tasks by name.
func (w *Worker) QueueNamedWork(name string, fn func()) error {
	if fn == nil {
		return errorsx.ArgumentNull("fn")
	}
	return w.Submit(&Task{Name: name, Run: fn})
}

// TaskMetrics returns per-name task metrics, or nil when the worker does not
// collect them
func (w *Worker) TaskMetrics() map[string]TaskMetrics {
	if w.metrics == nil {
		return nil
	}
	return w.metrics.Snapshot()
}

// LogMetrics logs the collected task metrics, if any
func (w *Worker) LogMetrics() {
	if w.metrics != nil {
		w.metrics.LogMetrics()
	}
}

// Submit appends task to the queue. A task without an ID gets a sequence number.
func (w *Worker) Submit(task *Task) error {
	if task == nil || task.Run == nil {
		return errorsx.ArgumentNull("task")
	}
	if !w.running.Load() {
		return ErrNotRunning
	}
	if task.ID == "" {
		task.ID = strconv.FormatUint(w.seq.Add(1), 10)
	}
	task.EnqueuedAt = time.Now()
	if err := w.provider.Push(task); err != nil {
		return err
	}
	w.growIfBacklogged()
	return nil
}

// growIfBacklogged adds a goroutine when more tasks are queued than goroutines
// are waiting for them
func (w *Worker) growIfBacklogged() {
	if w.provider.Len() > int(w.idle.Load()) {
		w.grow()
	}
}

// grow adds a goroutine unless the cap is reached or the worker is stopping
func (w *Worker) grow() {
	w.mu.RLock()
	defer w.mu.RUnlock()

	select {
	case <-w.stopCh:
		return
	default:
	}
	if w.runCtx == nil {
		return
	}
	max := int32(w.config.MaxConcurrency)
	if max > 0 && max <= int32(w.config.Concurrency) {
		return
	}
	var n int32
	for {
		n = w.total.Load()
		if max > 0 && n >= max {
			return
		}
		if w.total.CompareAndSwap(n, n+1) {
			break
		}
	}
	w.idle.Add(1)
	w.wg.Add(1)
	go w.processLoop(w.runCtx, int(n+1), true)
	w.logger.Debug("Worker pool grew", zap.Int32("goroutines", n+1))
}

// spawn starts a goroutine that counts as idle until it takes a task
func (w *Worker) spawn(ctx context.Context, elastic bool) {
	n := w.total.Add(1)
	w.idle.Add(1)
	w.wg.Add(1)
	go w.processLoop(ctx, int(n), elastic)
}

// GetWorkerCount returns the number of live worker goroutines
func (w *Worker) GetWorkerCount() int {
	return int(w.total.Load())
}

// GetIdleCount returns the number of goroutines waiting for work
func (w *Worker) GetIdleCount() int {
	return int(w.idle.Load())
}

// IsRunning reports whether the worker accepts work
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

// GetQueueLength returns the number of queued tasks
func (w *Worker) GetQueueLength() int {
	return w.provider.Len()
}

// GetQueueCapacity returns the queue bound, or -1 when unbounded
func (w *Worker) GetQueueCapacity() int {
	return w.provider.Cap()
}

// processLoop is the main processing loop for each worker goroutine. Elastic
// goroutines return once they idle for IdleTimeout with nothing queued.
func (w *Worker) processLoop(ctx context.Context, workerID int, elastic bool) {
	defer w.wg.Done()
	defer w.total.Add(-1)

	log := w.logger.With(zap.Int("worker_id", workerID), zap.Bool("elastic", elastic))
	log.Debug("Worker goroutine started")

	backoff := retry.ExponentialBackoff(w.config.ErrorBackoff, maxErrorBackoff, true)
	failures := 0
	for first := true; ; first = false {
		if !first {
			w.idle.Add(1)
		}
		task, err := w.fetch(ctx, elastic)
		w.idle.Add(-1)
		if errors.Is(err, errIdle) {
			// Submit checks the backlog after pushing, so a task pushed
			// before the decrement above is visible here.
			if w.provider.Len() > int(w.idle.Load()) {
				continue
			}
			log.Debug("Worker goroutine retired")
			return
		}
		if err != nil {
			if errors.Is(err, ErrProviderClosed) || ctx.Err() != nil {
				log.Debug("Worker goroutine stopping", zap.Error(err))
				return
			}
			failures++
			log.Error("Failed to fetch task", zap.Error(err), zap.Int("failures", failures))
			if backoff.Wait(ctx, failures) != nil {
				return
			}
			continue
		}

		failures = 0
		// Another queued task may have counted on this goroutine.
		w.growIfBacklogged()
		w.processTask(ctx, task)
	}
}

var errIdle = errors.New("worker: idle timeout")

func (w *Worker) fetch(ctx context.Context, elastic bool) (*Task, error) {
	if !elastic {
		return w.provider.Fetch(ctx)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, w.config.IdleTimeout)
	defer cancel()
	task, err := w.provider.Fetch(fetchCtx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, errIdle
	}
	return task, err
}

// processTask runs one task through the middleware chain and reports faults
func (w *Worker) processTask(ctx context.Context, task *Task) {
	err := w.invoke(ctx, task)
	if err == nil {
		return
	}
	if !errorsx.IsFault(err) {
		w.logger.Error("Task returned error",
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
		return
	}
	if w.config.OnFault == nil {
		panic(err)
	}
	w.config.OnFault(err)
}

// invoke guards the chain so a panic escaping the middlewares still becomes a fault
func (w *Worker) invoke(ctx context.Context, task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errorsx.FaultError{Value: r, Stack: debug.Stack()}
		}
	}()
	return w.handler.Process(ctx, task)
}
