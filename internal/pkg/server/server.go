// Package server exposes the scheduler's diagnostics over HTTP with echo.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"rxcal/internal/pkg/config"
	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/health"
	"rxcal/internal/pkg/logctx"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/scheduler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server wraps Echo server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
}

// Params defines the dependencies of the diagnostics server
type Params struct {
	fx.In

	Config    *config.Config
	Logger    *logger.Logger
	Health    *health.Service
	Registry  *enlightenment.Registry
	Scheduler *scheduler.DefaultScheduler
}

// NewEchoServer creates the diagnostics server with its routes registered
func NewEchoServer(p Params) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(p.Config.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(p.Config.Server.WriteTimeout) * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}))
	e.Use(middleware.RequestID())
	e.Use(requestLogger(p.Logger))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))

	e.GET("/health", echo.WrapHandler(health.DetailedHealthHandler(p.Health)))
	e.GET("/health/ready", echo.WrapHandler(health.ReadinessHandler(p.Health)))
	e.GET("/health/live", echo.WrapHandler(health.LivenessHandler()))
	e.GET("/capabilities", capabilitiesHandler(p.Registry, p.Scheduler))

	return &Server{echo: e, config: p.Config, logger: p.Logger}
}

// requestLogger tags the request context with its request id and logs one
// line per request
func requestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := logctx.WithCorrelationID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			log.With(logctx.Fields(ctx)...).Info("HTTP request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", c.Response().Status),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			)
			return err
		}
	}
}

// GetEcho returns the Echo instance
func (s *Server) GetEcho() *echo.Echo {
	return s.echo
}

// Addr is the configured listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.config.Server.Port))
}

// Listen binds the listen address so that a busy port fails startup
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr(), err)
	}
	s.echo.Listener = ln
	return nil
}

// Serve blocks serving requests until Shutdown
func (s *Server) Serve() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.Addr()))
	return s.echo.Start(s.Addr())
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
