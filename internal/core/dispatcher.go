package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/mailgun-routes/internal/metrics"
)

// Dispatcher hands accepted messages to the processing job queue
type Dispatcher struct {
	queue     JobQueue
	reencoder Reencoder
	logger    *zap.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(queue JobQueue, reencoder Reencoder, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		queue:     queue,
		reencoder: reencoder,
		logger:    logger,
	}
}

// Dispatch submits raw for processing. If the queue rejects the payload's
// encoding, raw is reinterpreted as ISO-8859-1, converted to UTF-8 and
// submitted exactly once more. Any other error, or a second failure, is
// returned.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) error {
	err := d.queue.Enqueue(ctx, newEmailJob(raw))
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrInvalidEncoding) {
		metrics.DispatchFailuresTotal.Inc()
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	d.logger.Warn("Email is not valid UTF-8, retrying as ISO-8859-1",
		zap.Int("size", len(raw)),
		zap.Error(err))
	metrics.DispatchReencodesTotal.Inc()

	converted, convErr := d.reencoder.Latin1ToUTF8(raw)
	if convErr != nil {
		metrics.DispatchFailuresTotal.Inc()
		return fmt.Errorf("failed to re-encode email: %w", convErr)
	}

	if err := d.queue.Enqueue(ctx, newEmailJob(converted)); err != nil {
		metrics.DispatchFailuresTotal.Inc()
		return fmt.Errorf("failed to enqueue re-encoded email: %w", err)
	}
	return nil
}

func newEmailJob(raw []byte) EmailJob {
	return EmailJob{
		ID:               uuid.NewString(),
		Name:             JobProcessEmail,
		Mail:             string(raw),
		RetryOnRateLimit: true,
		Source:           SourceHandleMail,
	}
}
