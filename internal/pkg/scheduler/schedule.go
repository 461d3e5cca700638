package scheduler

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule decides when a recurring action runs next.
type Schedule interface {
	// NextRun returns the next run time after from, or the zero time when
	// the schedule is finished.
	NextRun(from time.Time) time.Time
	// String returns a human-readable representation of the schedule.
	String() string
}

// CronSchedule represents a cron-based schedule.
type CronSchedule struct {
	Expression string
	schedule   cron.Schedule
}

// NewCronSchedule parses a standard five-field expression, an optional
// leading seconds field, or a descriptor such as "@every 1m".
func NewCronSchedule(expression string) (*CronSchedule, error) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	return &CronSchedule{
		Expression: expression,
		schedule:   schedule,
	}, nil
}

func (c *CronSchedule) NextRun(from time.Time) time.Time {
	return c.schedule.Next(from)
}

func (c *CronSchedule) String() string {
	return fmt.Sprintf("cron(%s)", c.Expression)
}

// IntervalSchedule runs a fixed interval after the previous run finished.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new interval schedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		Interval: interval,
	}
}

func (i *IntervalSchedule) NextRun(from time.Time) time.Time {
	return from.Add(i.Interval)
}

func (i *IntervalSchedule) String() string {
	return fmt.Sprintf("every %s", i.Interval)
}

// OnceSchedule runs once at RunAt, or immediately if RunAt has passed.
type OnceSchedule struct {
	RunAt time.Time
	ran   atomic.Bool
}

// NewOnceSchedule creates a new one-time schedule.
func NewOnceSchedule(runAt time.Time) *OnceSchedule {
	return &OnceSchedule{
		RunAt: runAt,
	}
}

func (o *OnceSchedule) NextRun(time.Time) time.Time {
	if o.ran.Load() {
		return time.Time{}
	}
	return o.RunAt
}

func (o *OnceSchedule) String() string {
	return fmt.Sprintf("once at %s", o.RunAt.Format(time.RFC3339))
}

// MarkRan marks the once schedule as executed.
func (o *OnceSchedule) MarkRan() {
	o.ran.Store(true)
}
