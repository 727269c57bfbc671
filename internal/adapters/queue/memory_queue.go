package queue

import (
	"context"
	"sync"

	"github.com/mikey/mailgun-routes/internal/core"
	"go.uber.org/zap"
)

// MemoryQueue is a bounded in-process implementation of core.JobQueue.
// Consumers in the same process read from Jobs; nothing reaches the
// external job system and queued jobs are lost on exit, so it is meant for
// tests and local runs.
type MemoryQueue struct {
	jobs   chan core.EmailJob
	mu     sync.RWMutex
	closed bool
	logger *zap.Logger
}

// NewMemoryQueue creates a new in-memory queue holding up to capacity jobs
func NewMemoryQueue(capacity int, logger *zap.Logger) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{
		jobs:   make(chan core.EmailJob, capacity),
		logger: logger,
	}
}

// Enqueue stores a job without blocking
func (q *MemoryQueue) Enqueue(ctx context.Context, job core.EmailJob) error {
	if _, err := encodeJob(job); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return core.ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("Job enqueued", zap.String("job_id", job.ID), zap.String("job", job.Name))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return core.ErrQueueFull
	}
}

// Len returns the number of buffered jobs
func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}

// Jobs returns the channel consumers read jobs from. It is closed by Stop.
func (q *MemoryQueue) Jobs() <-chan core.EmailJob {
	return q.jobs
}

// Stop refuses further jobs and closes the consumer channel
func (q *MemoryQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.jobs)
}
