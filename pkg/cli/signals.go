package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler creates a context that is canceled on the first SIGINT
// or SIGTERM. A second signal exits the process with ExitFailure without
// waiting for the graceful shutdown to finish.
func SetupSignalHandler() context.Context {
	return setupSignalHandler(func() { os.Exit(ExitFailure) })
}

func setupSignalHandler(forceExit func()) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("shutdown signal received", "signal", sig.String())
		cancel()

		<-sigChan
		slog.Warn("second signal received, exiting immediately")
		signal.Stop(sigChan)
		forceExit()
	}()

	return ctx
}
