// Package retry computes capped exponential backoff delays.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy describes a capped exponential backoff
type Policy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    bool
}

// ExponentialBackoff returns a policy doubling from base up to max
func ExponentialBackoff(base, max time.Duration, jitter bool) Policy {
	if max < base {
		max = base
	}
	return Policy{
		BaseDelay: base,
		MaxDelay:  max,
		Jitter:    jitter,
	}
}

// Delay returns the wait before the given attempt, counting from 1.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	// 2^(attempt-1) * base
	factor := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(p.BaseDelay) * factor)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	if p.Jitter {
		j := rand.Float64()*0.4 + 0.8 // [0.8, 1.2)
		delay = time.Duration(float64(delay) * j)
	}
	return delay
}

// Wait blocks for Delay(attempt) or until ctx is done.
func (p Policy) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
