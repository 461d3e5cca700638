package main

import (
	"fmt"
	"os"

	"rxcal/internal/pkg/config"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const version = "1.0.0"

// configFile is set by the --config flag
var configFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates and configures the root command
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "calctl",
		Short: "Concurrency abstraction layer",
		Long:  `Inspect the scheduling capabilities discovered on this host and run the scheduler with a diagnostics server.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: search for config/config.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// configOption supplies the --config path to the config module
func configOption() fx.Option {
	if configFile == "" {
		return fx.Options()
	}
	return fx.Supply(config.File(configFile))
}
