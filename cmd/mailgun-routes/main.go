package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/mikey/mailgun-routes/internal/di"
	"github.com/mikey/mailgun-routes/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	receiver ports.Receiver,
	queue core.JobQueue,
) error {
	defer logger.Sync()

	// Start the receiver
	if err := receiver.Start(); err != nil {
		logger.Error("Failed to start receiver", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := receiver.Stop(); err != nil {
		logger.Error("Failed to stop receiver", zap.Error(err))
	}

	// Release the queue backend once no request can enqueue
	if stopper, ok := queue.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
