package factory

import (
	"fmt"

	"github.com/mikey/mailgun-routes/internal/adapters/webhook"
	"github.com/mikey/mailgun-routes/internal/config"
	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/mikey/mailgun-routes/internal/ports"
	"go.uber.org/zap"
)

// ReceiverFactory creates inbound receivers based on configuration
type ReceiverFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ReceiverService
	queue   core.JobQueue
}

// NewReceiverFactory creates a new receiver factory
func NewReceiverFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.ReceiverService,
	queue core.JobQueue,
) *ReceiverFactory {
	return &ReceiverFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		queue:   queue,
	}
}

// CreateReceiver creates a receiver based on the configuration
func (f *ReceiverFactory) CreateReceiver() (ports.Receiver, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.ReceiverType {
	case "http":
		return webhook.NewServer(
			f.service,
			f.queue,
			f.logger,
			serverCfg.ListenAddress,
			serverCfg.MaxBodySize,
			serverCfg.ReadTimeout,
			serverCfg.WriteTimeout,
		), nil
	default:
		return nil, fmt.Errorf("unsupported receiver type: %s", serverCfg.ReceiverType)
	}
}
