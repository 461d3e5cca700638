package platform

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rxcal/internal/pkg/errorsx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type faultSink struct {
	mu     sync.Mutex
	faults []error
}

func (s *faultSink) handle(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, err)
}

func (s *faultSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faults)
}

func (s *faultSink) first() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.faults) == 0 {
		return nil
	}
	return s.faults[0]
}

func TestGuard_RoutesPanicToHandler(t *testing.T) {
	sink := &faultSink{}
	Guard(func() { panic("boom") }, sink.handle)

	require.Equal(t, 1, sink.count())
	var fault *errorsx.FaultError
	require.True(t, errors.As(sink.first(), &fault))
	assert.Equal(t, "boom", fault.Value)
	assert.NotEmpty(t, fault.Stack)
}

func TestGuard_NilHandlerRepanics(t *testing.T) {
	assert.Panics(t, func() {
		Guard(func() { panic("boom") }, nil)
	})
}

func TestGoroutineQueue(t *testing.T) {
	sink := &faultSink{}
	q := NewGoroutineQueue(sink.handle)

	var ran atomic.Int32
	done := make(chan struct{})
	require.NoError(t, q.QueueWork(func() {
		ran.Add(1)
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("work item did not run")
	}
	assert.Equal(t, int32(1), ran.Load())

	require.NoError(t, q.QueueWork(func() { panic("bad item") }))
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	err := q.QueueWork(nil)
	assert.True(t, errorsx.IsArgumentNull(err))
}

func TestSystemClock_Timer(t *testing.T) {
	clock := NewSystemClock()

	fired := make(chan struct{})
	clock.StartTimer(func() { close(fired) }, 0)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("zero due timer did not fire")
	}

	var late atomic.Bool
	h := clock.StartTimer(func() { late.Store(true) }, 50*time.Millisecond)
	h.Dispose()
	assert.Never(t, late.Load, 150*time.Millisecond, 10*time.Millisecond)
}

func TestSystemClock_Sleep(t *testing.T) {
	clock := NewSystemClock()
	start := time.Now()
	clock.Sleep(20 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	clock.Sleep(-time.Second)
}

func TestPeriodic_NoOverlap(t *testing.T) {
	sink := &faultSink{}
	timers := NewPeriodicTimers(NewGoroutineQueue(sink.handle), NewSystemClock(), nil)

	var active, maxActive, count atomic.Int32
	h := timers.StartPeriodicTimer(time.Millisecond, func(*PeriodicState) {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		count.Add(1)
	})

	require.Eventually(t, func() bool { return count.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	h.Dispose()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.Zero(t, sink.count())
}

func TestPeriodic_StopsAfterDispose(t *testing.T) {
	timers := NewPeriodicTimers(NewGoroutineQueue(nil), NewSystemClock(), nil)

	var count atomic.Int64
	h := timers.StartPeriodicTimer(2*time.Millisecond, func(*PeriodicState) {
		count.Add(1)
	})
	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, 2*time.Millisecond)

	h.Dispose()
	time.Sleep(20 * time.Millisecond)
	settled := count.Load()
	assert.Never(t, func() bool { return count.Load() != settled }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestPeriodic_ZeroPeriodYields(t *testing.T) {
	timers := NewPeriodicTimers(NewGoroutineQueue(nil), NewSystemClock(), nil)

	var count atomic.Int64
	other := make(chan struct{})
	h := timers.StartPeriodicTimer(0, func(*PeriodicState) {
		count.Add(1)
	})
	defer h.Dispose()

	go close(other)
	select {
	case <-other:
	case <-time.After(time.Second):
		t.Fatal("zero period timer starved other goroutines")
	}
	require.Eventually(t, func() bool { return count.Load() > 10 }, time.Second, time.Millisecond)
}

func TestPeriodic_StateAndPeriodChange(t *testing.T) {
	timers := NewPeriodicTimers(NewGoroutineQueue(nil), NewSystemClock(), nil)

	iterations := make(chan int64, 8)
	h := timers.StartPeriodicTimer(time.Millisecond, func(s *PeriodicState) {
		s.Period = 2 * time.Millisecond
		select {
		case iterations <- s.Iteration:
		default:
		}
	})
	defer h.Dispose()

	assert.Equal(t, int64(1), <-iterations)
	assert.Equal(t, int64(2), <-iterations)
	assert.Equal(t, int64(3), <-iterations)
}

func TestPeriodic_FaultStopsTimer(t *testing.T) {
	sink := &faultSink{}
	timers := NewPeriodicTimers(NewGoroutineQueue(sink.handle), NewSystemClock(), nil)

	var count atomic.Int64
	h := timers.StartPeriodicTimer(time.Millisecond, func(*PeriodicState) {
		if count.Add(1) == 2 {
			panic("second tick fails")
		}
	})

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 2*time.Millisecond)
	assert.True(t, h.IsDisposed())
	assert.Never(t, func() bool { return count.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.True(t, errorsx.IsFault(sink.first()))
}

// rejectingQueue fails QueueWork with err until it has rejected n items
type rejectingQueue struct {
	inner    WorkQueue
	err      error
	n        int32
	rejected atomic.Int32
}

func (q *rejectingQueue) QueueWork(fn func()) error {
	if q.rejected.Load() < q.n {
		q.rejected.Add(1)
		return q.err
	}
	return q.inner.QueueWork(fn)
}

func TestPeriodic_RetriesRejectedTicks(t *testing.T) {
	queue := &rejectingQueue{inner: NewGoroutineQueue(nil), err: errors.New("queue full"), n: 3}
	timers := NewPeriodicTimers(queue, NewSystemClock(), nil)

	var count atomic.Int64
	h := timers.StartPeriodicTimer(2*time.Millisecond, func(*PeriodicState) {
		count.Add(1)
	})
	defer h.Dispose()

	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, 2*time.Millisecond)
	assert.Equal(t, int32(3), queue.rejected.Load())
	assert.False(t, h.IsDisposed())
}

func TestPeriodic_ZeroPeriodRetriesRejectedTicks(t *testing.T) {
	queue := &rejectingQueue{inner: NewGoroutineQueue(nil), err: errors.New("queue full"), n: 2}
	timers := NewPeriodicTimers(queue, NewSystemClock(), nil)

	var count atomic.Int64
	h := timers.StartPeriodicTimer(0, func(*PeriodicState) {
		count.Add(1)
	})
	defer h.Dispose()

	require.Eventually(t, func() bool { return count.Load() >= 5 }, time.Second, time.Millisecond)
}

func TestPeriodic_StoppedQueueEndsTimer(t *testing.T) {
	queue := &rejectingQueue{err: fmt.Errorf("pool: %w", ErrQueueStopped), n: 1}
	timers := NewPeriodicTimers(queue, NewSystemClock(), nil)

	var count atomic.Int64
	h := timers.StartPeriodicTimer(time.Millisecond, func(*PeriodicState) {
		count.Add(1)
	})

	require.Eventually(t, h.IsDisposed, time.Second, time.Millisecond)
	assert.Zero(t, count.Load())
}

func TestDedicatedThreads(t *testing.T) {
	sink := &faultSink{}
	threads := NewDedicatedThreads(sink.handle)

	done := make(chan struct{})
	require.NoError(t, threads.StartThread(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("thread did not run")
	}

	require.NoError(t, threads.StartThread(func() { panic("thread fault") }))
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	assert.True(t, errorsx.IsArgumentNull(threads.StartThread(nil)))
}

func TestPinnedThreads(t *testing.T) {
	threads, err := NewPinnedThreads(1, nil, nil)
	if !PinningSupported() {
		require.Error(t, err)
		assert.True(t, errorsx.IsUnsupported(err))
		return
	}
	require.NoError(t, err)

	done := make(chan struct{})
	require.NoError(t, threads.StartThread(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pinned thread did not run")
	}
}

func TestStopwatch_Monotonic(t *testing.T) {
	sw := NewStopwatchFactory().StartStopwatch()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := time.Duration(0)
			for j := 0; j < 1000; j++ {
				cur := sw.Elapsed()
				if cur < prev {
					t.Errorf("elapsed went backwards: %s < %s", cur, prev)
					return
				}
				prev = cur
			}
		}()
	}
	wg.Wait()

	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, sw.Elapsed(), 5*time.Millisecond)
}

func TestHostProbe(t *testing.T) {
	env, err := HostProbe(ProbeOptions{AllowThreads: true, EnableTaskPool: true})()
	require.NoError(t, err)

	assert.Positive(t, env.NumCPU)
	assert.NotEmpty(t, env.GOOS)
	assert.True(t, env.CanSpawnThreads)
	assert.True(t, env.TaskPool)
	assert.False(t, env.CanPinThreads, "pinning needs to be requested")
	assert.False(t, env.Portable)

	env, err = HostProbe(ProbeOptions{PinThreads: true})()
	require.NoError(t, err)
	assert.False(t, env.CanPinThreads, "pinning needs threads")
}

func TestStaticProbeAndPortable(t *testing.T) {
	probeErr := errors.New("no access")
	_, err := StaticProbe(Environment{}, probeErr)()
	assert.ErrorIs(t, err, probeErr)

	env := Portable()
	assert.True(t, env.Portable)
	assert.Equal(t, 1, env.NumCPU)
	assert.False(t, env.CanSpawnThreads)
	assert.False(t, env.TaskPool)
}
