package platform

import (
	"time"

	"rxcal/internal/pkg/disposable"
)

type systemClock struct{}

// NewSystemClock returns the Clock backed by the time package.
func NewSystemClock() Clock {
	return &systemClock{}
}

func (*systemClock) Now() time.Time {
	return time.Now()
}

func (*systemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// StartTimer always goes through a runtime timer, so even a zero due time runs
// fn asynchronously.
func (*systemClock) StartTimer(fn func(), dueTime time.Duration) disposable.Disposable {
	if dueTime < 0 {
		dueTime = 0
	}
	t := time.AfterFunc(dueTime, fn)
	return disposable.NewFunc(func() {
		t.Stop()
	})
}
