package cal

import (
	"rxcal/internal/pkg/config"
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/health"
	"rxcal/internal/pkg/logctx"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/scheduler"
	"rxcal/internal/pkg/server"

	"go.uber.org/fx"
)

// App runs the scheduler with the diagnostics server and a heartbeat
var App = fx.Options(
	// Infrastructure modules
	config.Module,
	logger.Module,
	logctx.Module,
	enlightenment.Module,
	scheduler.Module,
	health.Module,
	server.Module,

	fx.Provide(NewHeartbeat),
	fx.Invoke(registerHeartbeat),
)

// ProbeApp resolves capabilities without starting the server
var ProbeApp = fx.Options(
	config.Module,
	logger.Module,
	enlightenment.Module,
)
