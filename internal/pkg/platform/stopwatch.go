package platform

import (
	"sync/atomic"
	"time"
)

type monotonicStopwatch struct {
	start time.Time
	last  atomic.Int64
}

// NewStopwatch starts a stopwatch on the runtime's monotonic clock. Elapsed
// never decreases, even when read from several goroutines.
func NewStopwatch() Stopwatch {
	return &monotonicStopwatch{start: time.Now()}
}

func (s *monotonicStopwatch) Elapsed() time.Duration {
	d := int64(time.Since(s.start))
	for {
		prev := s.last.Load()
		if d <= prev {
			return time.Duration(prev)
		}
		if s.last.CompareAndSwap(prev, d) {
			return time.Duration(d)
		}
	}
}

type monotonicStopwatches struct{}

// NewStopwatchFactory returns the portable StopwatchFactory.
func NewStopwatchFactory() StopwatchFactory {
	return &monotonicStopwatches{}
}

func (*monotonicStopwatches) StartStopwatch() Stopwatch {
	return NewStopwatch()
}
