package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

// runApp starts app, calls started, then blocks until a shutdown signal
// and stops app within fx.DefaultTimeout
func runApp(app *fx.App, name string, started func()) error {
	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	if started != nil {
		started()
	}
	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop %s: %w", name, err)
	}

	if sig.ExitCode != 0 {
		return fmt.Errorf("%s exited with code %d", name, sig.ExitCode)
	}
	return nil
}
