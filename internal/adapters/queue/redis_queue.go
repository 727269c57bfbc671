package queue

import (
	"context"
	"fmt"

	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisQueue pushes jobs onto a Redis list consumed by the processing workers
type RedisQueue struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisQueue creates a new Redis-backed queue on the list "queue:<name>"
func NewRedisQueue(client *redis.Client, name string, logger *zap.Logger) *RedisQueue {
	return &RedisQueue{
		client: client,
		key:    fmt.Sprintf("queue:%s", name),
		logger: logger,
	}
}

// Enqueue pushes the encoded job onto the list
func (q *RedisQueue) Enqueue(ctx context.Context, job core.EmailJob) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push job to %s: %w", q.key, err)
	}

	q.logger.Debug("Job enqueued", zap.String("job_id", job.ID), zap.String("key", q.key))
	return nil
}

// Len returns the list length
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read length of %s: %w", q.key, err)
	}
	return n, nil
}

// Stop closes the Redis client
func (q *RedisQueue) Stop() {
	if err := q.client.Close(); err != nil {
		q.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
