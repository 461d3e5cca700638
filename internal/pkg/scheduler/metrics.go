package scheduler

import (
	"sync/atomic"
	"time"
)

// ActionKind labels the scheduling path an action took.
type ActionKind string

const (
	KindImmediate   ActionKind = "immediate"
	KindDelayed     ActionKind = "delayed"
	KindPeriodic    ActionKind = "periodic"
	KindRecurring   ActionKind = "recurring"
	KindLongRunning ActionKind = "long-running"
)

// MetricsCollector defines the metrics interface for the scheduler.
type MetricsCollector interface {
	ActionScheduled(kind ActionKind)
	ActionStarted(kind ActionKind)
	ActionCompleted(kind ActionKind, duration time.Duration)
	ActionFaulted(kind ActionKind)
	ActionCancelled(kind ActionKind)
}

// NoOpMetrics is a metrics collector that does nothing.
type NoOpMetrics struct{}

func (n *NoOpMetrics) ActionScheduled(kind ActionKind)                         {}
func (n *NoOpMetrics) ActionStarted(kind ActionKind)                           {}
func (n *NoOpMetrics) ActionCompleted(kind ActionKind, duration time.Duration) {}
func (n *NoOpMetrics) ActionFaulted(kind ActionKind)                           {}
func (n *NoOpMetrics) ActionCancelled(kind ActionKind)                         {}

// Stats is a snapshot of a scheduler's counters.
type Stats struct {
	Scheduled         int64 `json:"scheduled"`
	Executed          int64 `json:"executed"`
	Cancelled         int64 `json:"cancelled"`
	Faulted           int64 `json:"faulted"`
	Running           int64 `json:"running"`
	ActiveLongRunning int64 `json:"active_long_running"`
}

// counters backs Stats.
type counters struct {
	scheduled   atomic.Int64
	executed    atomic.Int64
	cancelled   atomic.Int64
	faulted     atomic.Int64
	running     atomic.Int64
	longRunning atomic.Int64
}

func (c *counters) ActionScheduled(ActionKind) {
	c.scheduled.Add(1)
}

func (c *counters) ActionStarted(kind ActionKind) {
	c.running.Add(1)
	if kind == KindLongRunning {
		c.longRunning.Add(1)
	}
}

func (c *counters) ActionCompleted(kind ActionKind, _ time.Duration) {
	c.finished(kind)
	c.executed.Add(1)
}

func (c *counters) ActionFaulted(kind ActionKind) {
	c.finished(kind)
	c.faulted.Add(1)
}

func (c *counters) ActionCancelled(ActionKind) {
	c.cancelled.Add(1)
}

func (c *counters) finished(kind ActionKind) {
	c.running.Add(-1)
	if kind == KindLongRunning {
		c.longRunning.Add(-1)
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Scheduled:         c.scheduled.Load(),
		Executed:          c.executed.Load(),
		Cancelled:         c.cancelled.Load(),
		Faulted:           c.faulted.Load(),
		Running:           c.running.Load(),
		ActiveLongRunning: c.longRunning.Load(),
	}
}

// fanout reports to every collector in order.
type fanout []MetricsCollector

func (f fanout) ActionScheduled(kind ActionKind) {
	for _, m := range f {
		m.ActionScheduled(kind)
	}
}

func (f fanout) ActionStarted(kind ActionKind) {
	for _, m := range f {
		m.ActionStarted(kind)
	}
}

func (f fanout) ActionCompleted(kind ActionKind, duration time.Duration) {
	for _, m := range f {
		m.ActionCompleted(kind, duration)
	}
}

func (f fanout) ActionFaulted(kind ActionKind) {
	for _, m := range f {
		m.ActionFaulted(kind)
	}
}

func (f fanout) ActionCancelled(kind ActionKind) {
	for _, m := range f {
		m.ActionCancelled(kind)
	}
}
