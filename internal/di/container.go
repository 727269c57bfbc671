package di

import (
	"go.uber.org/dig"

	"github.com/mikey/mailgun-routes/internal/config"
	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/mikey/mailgun-routes/internal/factory"
	"github.com/mikey/mailgun-routes/internal/logging"
	"github.com/mikey/mailgun-routes/internal/ports"
	"github.com/mikey/mailgun-routes/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewQueueFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReceiverFactory); err != nil {
		return nil, err
	}

	// Register job queue
	if err := container.Provide(func(f *factory.QueueFactory) (core.JobQueue, error) {
		return f.CreateJobQueue()
	}); err != nil {
		return nil, err
	}

	// Register dispatcher and receiver service
	if err := container.Provide(core.NewDispatcher); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewReceiverService); err != nil {
		return nil, err
	}

	// Register inbound receiver
	if err := container.Provide(func(f *factory.ReceiverFactory) (ports.Receiver, error) {
		return f.CreateReceiver()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCore registers the pieces shared by the server and the CLI
func provideCore(container *dig.Container) error {
	// Policy is read from configuration on every request
	if err := container.Provide(func(cfg *config.Config) core.PolicyProvider {
		return cfg
	}); err != nil {
		return err
	}

	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(tp *utils.TextProcessor) core.Reencoder {
		return tp
	}); err != nil {
		return err
	}

	return container.Provide(core.NewGate)
}
