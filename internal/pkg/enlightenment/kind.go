// Package enlightenment discovers, once per registry, the best available
// implementation of every scheduling capability and caches it.
//
// Discovery runs in two steps. Resolve is a pure function from a probed
// Environment and a provider list to a Plan. The Registry installs the Plan
// with a compare-and-swap, so concurrent first users never block on a probe
// and the first writer wins. Instances are then built lazily, at most once per
// kind.
package enlightenment

import (
	"fmt"
)

// Kind names a capability. The set is closed.
type Kind string

const (
	KindWorkQueue   Kind = "work-queue"
	KindTimer       Kind = "timer"
	KindPeriodic    Kind = "periodic"
	KindLongRunning Kind = "long-running"
	KindStopwatch   Kind = "stopwatch"
	KindTaskPool    Kind = "task-pool"
)

// Kinds returns every kind in resolution order. A provider may only look up
// kinds that come before its own.
func Kinds() []Kind {
	return []Kind{
		KindWorkQueue,
		KindTimer,
		KindPeriodic,
		KindLongRunning,
		KindStopwatch,
		KindTaskPool,
	}
}

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown capability kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}
