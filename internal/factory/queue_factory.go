package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/mikey/mailgun-routes/internal/adapters/queue"
	"github.com/mikey/mailgun-routes/internal/config"
	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// QueueFactory creates job queues based on configuration
type QueueFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewQueueFactory creates a new queue factory
func NewQueueFactory(cfg *config.Config, logger *zap.Logger) *QueueFactory {
	return &QueueFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateJobQueue creates a job queue based on the configuration
func (f *QueueFactory) CreateJobQueue() (core.JobQueue, error) {
	queueCfg := f.cfg.GetQueue()

	switch queueCfg.Type {
	case "memory":
		f.logger.Warn("Using in-memory job queue; accepted emails are not persisted or delivered to workers",
			zap.Int("capacity", queueCfg.MemoryCapacity))
		return queue.NewMemoryQueue(queueCfg.MemoryCapacity, f.logger), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     queueCfg.RedisAddr,
			Password: queueCfg.RedisPassword,
			DB:       queueCfg.RedisDB,
		})
		return queue.NewRedisQueue(client, queueCfg.Name, f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(queueCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return queue.NewSQLiteQueue(queueCfg.SQLitePath, queueCfg.Name, f.logger)
	case "mysql":
		return queue.NewMySQLQueue(queueCfg.MySQLDSN, queueCfg.Name, f.logger)
	case "sqs":
		if queueCfg.SQSQueueURL == "" {
			return nil, fmt.Errorf("sqs queue URL is required")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(queueCfg.SQSRegion),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), queueCfg.SQSQueueURL, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported queue type: %s", queueCfg.Type)
	}
}
