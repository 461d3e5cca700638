package worker

import (
	"runtime"
	"time"
)

// Config holds the configuration for the worker
type Config struct {
	// Concurrency is the number of worker goroutines kept alive while idle
	Concurrency int

	// MaxConcurrency caps the goroutines added when every worker is busy.
	// 0 means no cap; a value at or below Concurrency keeps the pool fixed.
	MaxConcurrency int

	// IdleTimeout retires goroutines added above Concurrency after they
	// have waited this long for work
	IdleTimeout time.Duration

	// ShutdownTimeout bounds how long Stop waits for running tasks
	ShutdownTimeout time.Duration

	// ErrorBackoff is the first delay after a fetch error; it doubles on
	// consecutive failures
	ErrorBackoff time.Duration

	// OnFault receives an *errorsx.FaultError when a task panics.
	// When nil the fault is re-raised and crashes the process.
	OnFault func(err error)
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Concurrency:     runtime.NumCPU(),
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		ErrorBackoff:    100 * time.Millisecond,
	}
}
