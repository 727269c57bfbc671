package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(2, zap.NewNop())

	require.NoError(t, q.Enqueue(ctx, testJob("one")))
	require.NoError(t, q.Enqueue(ctx, testJob("two")))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = q.Enqueue(ctx, testJob("three"))
	assert.True(t, errors.Is(err, core.ErrQueueFull))

	job := <-q.Jobs()
	assert.Equal(t, "one", job.Mail)
}

func TestMemoryQueueRejectsInvalidEncoding(t *testing.T) {
	q := NewMemoryQueue(1, zap.NewNop())

	err := q.Enqueue(context.Background(), testJob("caf\xe9"))

	assert.True(t, errors.Is(err, core.ErrInvalidEncoding))
	n, _ := q.Len(context.Background())
	assert.Zero(t, n)
}

func TestMemoryQueueStop(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4, zap.NewNop())
	require.NoError(t, q.Enqueue(ctx, testJob("queued")))

	q.Stop()
	q.Stop()

	assert.True(t, errors.Is(q.Enqueue(ctx, testJob("late")), core.ErrQueueClosed))

	var drained []string
	for job := range q.Jobs() {
		drained = append(drained, job.Mail)
	}
	assert.Equal(t, []string{"queued"}, drained)
}
