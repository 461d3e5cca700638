package enlightenment

import (
	"context"

	"rxcal/internal/pkg/config"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/platform"
	"rxcal/internal/pkg/worker"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module exports the registry for FX
var Module = fx.Module("enlightenment",
	fx.Provide(NewFromConfig),
	fx.Invoke(registerHooks),
)

// NewFromConfig builds a registry from application configuration
func NewFromConfig(cfg *config.Config, log *logger.Logger) (*Registry, error) {
	disabled := make([]Kind, 0, len(cfg.Enlightenment.Disabled))
	for _, s := range cfg.Enlightenment.Disabled {
		k, err := ParseKind(s)
		if err != nil {
			return nil, err
		}
		disabled = append(disabled, k)
	}

	pool := worker.DefaultPoolConfig()
	pool.MaxQueueLength = cfg.Scheduler.QueueSize
	if cfg.Scheduler.Workers > 0 {
		pool.Worker.Concurrency = cfg.Scheduler.Workers
	}
	pool.Worker.MaxConcurrency = cfg.Scheduler.MaxWorkers
	if cfg.Scheduler.IdleTimeout > 0 {
		pool.Worker.IdleTimeout = cfg.Scheduler.IdleTimeout
	}
	if cfg.Scheduler.ShutdownTimeout > 0 {
		pool.Worker.ShutdownTimeout = cfg.Scheduler.ShutdownTimeout
	}

	return New(Options{
		Probe: platform.HostProbe(platform.ProbeOptions{
			AllowThreads:   cfg.Enlightenment.AllowThreads,
			PinThreads:     cfg.Enlightenment.PinThreads,
			EnableTaskPool: cfg.Enlightenment.EnableTaskPool,
		}),
		Providers: Builtin(BuiltinConfig{Pool: pool, TaskPool: pool}),
		Disabled:  disabled,
		Logger:    log,
	}), nil
}

// registerHooks loads the registry on start and stops its pools on shutdown
func registerHooks(lc fx.Lifecycle, registry *Registry, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			registry.EnsureLoaded()
			env := registry.Environment()
			log.Info("Capability registry loaded",
				zap.String("goos", env.GOOS),
				zap.Int("num_cpu", env.NumCPU),
				zap.Bool("portable", env.Portable),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping capability registry")
			return registry.Shutdown(ctx)
		},
	})
}
