package main

import (
	"fmt"

	"rxcal/internal/pkg/config"
	"rxcal/internal/service/cal"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// newServeCmd creates the serve command
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduler and the diagnostics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// runServer starts the scheduler, health checks and the HTTP server
func runServer() error {
	var cfg *config.Config
	app := fx.New(
		cal.App,
		configOption(),
		fx.Populate(&cfg),
		fx.NopLogger,
	)

	return runApp(app, "calctl", func() {
		fmt.Printf("Diagnostics server listening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	})
}
