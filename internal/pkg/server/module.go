package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rxcal/internal/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module exports the server module for FX
var Module = fx.Module("server",
	fx.Provide(
		NewEchoServer,
	),
	fx.Invoke(registerHooks),
)

// registerHooks registers lifecycle hooks for server
func registerHooks(lc fx.Lifecycle, server *Server, log *logger.Logger) {
	timeout := time.Duration(server.config.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := server.Listen(); err != nil {
				return err
			}
			go func() {
				if err := server.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server error", zap.Error(err))
				}
			}()
			log.Info("Server module started", zap.String("address", server.Addr()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			log.Info("Stopping server")
			return server.Shutdown(shutdownCtx)
		},
	})
}
