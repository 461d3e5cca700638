package enlightenment

import (
	"context"
	"fmt"

	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/platform"
	"rxcal/internal/pkg/worker"
)

// BuiltinConfig shapes the built-in providers.
type BuiltinConfig struct {
	// Pool configures the worker pool backing the specialized work queue
	Pool worker.PoolConfig
	// TaskPool configures the separate pool behind KindTaskPool
	TaskPool worker.PoolConfig
}

// DefaultBuiltinConfig returns pool settings sized to the host.
func DefaultBuiltinConfig() BuiltinConfig {
	return BuiltinConfig{
		Pool:     worker.DefaultPoolConfig(),
		TaskPool: worker.DefaultPoolConfig(),
	}
}

// Builtin returns the providers shipped with the package: portable defaults
// for every kind except the task pool, plus the specialized worker pool,
// pinned threads and task pool.
func Builtin(cfg BuiltinConfig) []Provider {
	return []Provider{
		NewProvider("worker-pool", KindWorkQueue, true, nil, func(deps Deps) (any, error) {
			return startPool(cfg.Pool, deps, "worker-pool")
		}),
		NewProvider("goroutine", KindWorkQueue, false, nil, func(deps Deps) (any, error) {
			return platform.NewGoroutineQueue(deps.OnFault), nil
		}),

		NewProvider("system-clock", KindTimer, false, nil, func(Deps) (any, error) {
			return platform.NewSystemClock(), nil
		}),

		NewProvider("rearming", KindPeriodic, false, nil, func(deps Deps) (any, error) {
			queue, err := lookup[platform.WorkQueue](deps, KindWorkQueue)
			if err != nil {
				return nil, err
			}
			clock, err := lookup[platform.Clock](deps, KindTimer)
			if err != nil {
				return nil, err
			}
			return platform.NewPeriodicTimers(queue, clock, deps.Logger), nil
		}),

		NewProvider("pinned-threads", KindLongRunning, true,
			func(env platform.Environment) bool { return env.CanPinThreads },
			func(deps Deps) (any, error) {
				return platform.NewPinnedThreads(deps.Env.NumCPU, deps.OnFault, deps.Logger)
			}),
		NewProvider("dedicated-threads", KindLongRunning, false,
			func(env platform.Environment) bool { return env.CanSpawnThreads },
			func(deps Deps) (any, error) {
				return platform.NewDedicatedThreads(deps.OnFault), nil
			}),

		NewProvider("monotonic", KindStopwatch, false, nil, func(Deps) (any, error) {
			return platform.NewStopwatchFactory(), nil
		}),

		NewProvider("task-pool", KindTaskPool, true,
			func(env platform.Environment) bool { return env.TaskPool },
			func(deps Deps) (any, error) {
				return startPool(cfg.TaskPool, deps, "task-pool")
			}),
	}
}

func startPool(cfg worker.PoolConfig, deps Deps, name string) (*worker.Worker, error) {
	cfg.Worker.OnFault = deps.OnFault
	w, _ := worker.NewPool(cfg, logger.OrNop(deps.Logger).Named(name))
	if err := w.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	return w, nil
}

func lookup[T any](deps Deps, kind Kind) (T, error) {
	var zero T
	v, ok := deps.Lookup(kind)
	if !ok {
		return zero, fmt.Errorf("%s is not available", kind)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s instance has type %T", kind, v)
	}
	return t, nil
}
