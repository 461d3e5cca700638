package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/service/cal"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newProbeCmd creates the probe command
func newProbeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Print the capabilities resolved for this host",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

// runProbe resolves every capability once and prints the outcome
func runProbe(out io.Writer, asJSON bool) error {
	var (
		registry *enlightenment.Registry
		log      *logger.Logger
	)
	app := fx.New(
		cal.ProbeApp,
		configOption(),
		fx.Populate(&registry, &log),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build probe: %w", err)
	}
	defer func() {
		if err := registry.Shutdown(context.Background()); err != nil {
			log.Warn("Failed to stop capability registry", zap.Error(err))
		}
	}()

	return writeProbe(out, registry, asJSON)
}

// writeProbe prints the environment and the provider chosen for every kind
func writeProbe(out io.Writer, registry *enlightenment.Registry, asJSON bool) error {
	env := registry.Environment()
	regs := registry.Registrations()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"environment": env,
			"providers":   regs,
		})
	}

	fmt.Fprintf(out, "Host: %s/%s, %d CPU(s), portable=%v\n", env.GOOS, env.GOARCH, env.NumCPU, env.Portable)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tPROVIDER\tSPECIALIZED")
	for _, reg := range regs {
		fmt.Fprintf(w, "%s\t%s\t%v\n", reg.Kind, reg.Provider, reg.Specialized)
	}
	return w.Flush()
}
