package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"
)

// run blocks until a signal or an fx shutdown, then stops the app with its own stop timeout.
func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		if sig.ExitCode != 0 {
			_ = app.Stop(context.Background())
			return fmt.Errorf("application exited with code %d", sig.ExitCode)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop application: %w", err)
	}
	return nil
}
