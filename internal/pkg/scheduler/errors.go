package scheduler

import "errors"

var (
	// ErrNoProvider means the registry has nothing that can back the requested primitive
	ErrNoProvider = errors.New("no provider registered")

	// ErrNegativePeriod rejects periodic schedules with a period below zero
	ErrNegativePeriod = errors.New("period must not be negative")
)
