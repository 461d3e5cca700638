package health

import (
	"context"

	"rxcal/internal/pkg/config"
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/scheduler"

	"go.uber.org/fx"
)

// Module exports the health module for FX
var Module = fx.Module("health",
	fx.Provide(NewHealthService),
	fx.Invoke(registerHooks),
)

// HealthServiceParams defines the dependencies for the health service
type HealthServiceParams struct {
	fx.In

	Config    *config.Config
	Logger    *logger.Logger
	Registry  *enlightenment.Registry
	Scheduler *scheduler.DefaultScheduler
}

// NewHealthService constructs a new health service with auto-registered providers
func NewHealthService(params HealthServiceParams) (*Service, error) {
	serviceConfig := DefaultServiceConfig()
	serviceConfig.AsyncMode = params.Config.Health.AsyncMode
	serviceConfig.AggregationStrategy = StrategyCritical
	serviceConfig.CriticalProviders = []string{"capabilities", "work-queue"}
	serviceConfig.Scheduler = params.Scheduler
	if params.Config.Health.CheckInterval > 0 {
		serviceConfig.CheckInterval = params.Config.Health.CheckInterval
	}
	if params.Config.Health.DefaultTimeout > 0 {
		serviceConfig.DefaultTimeout = params.Config.Health.DefaultTimeout
	}

	service, err := NewService(serviceConfig)
	if err != nil {
		return nil, err
	}

	service.RegisterProvider(NewRegistryProvider("capabilities", params.Registry))
	service.RegisterProvider(NewSchedulerProvider("scheduler", params.Scheduler))

	// The pool only exists when the specialized work queue was chosen
	if queue, ok := params.Registry.WorkQueue(); ok {
		if checker, ok := queue.(WorkerHealthChecker); ok {
			service.RegisterProvider(NewWorkerProvider(WorkerProviderConfig{
				Name:           "work-queue",
				Checker:        checker,
				MaxQueueLength: params.Config.Health.MaxQueueLength,
			}))
			params.Logger.Info("Registered worker pool health provider")
		}
	}

	params.Logger.Info("Health service initialized")
	return service, nil
}

// registerHooks registers lifecycle hooks for the health service
func registerHooks(lc fx.Lifecycle, service *Service, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Health service started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping health service")
			service.Stop()
			return nil
		},
	})
}
