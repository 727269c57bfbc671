package core

import (
	"context"
	"errors"
)

var (
	// ErrInvalidEncoding is returned by a JobQueue when the job payload
	// contains bytes the queue's wire encoding (UTF-8) cannot carry
	ErrInvalidEncoding = errors.New("job payload is not valid UTF-8")
	// ErrQueueFull is returned when a bounded queue cannot take more jobs
	ErrQueueFull = errors.New("job queue is full")
	// ErrQueueClosed is returned when enqueueing after Stop
	ErrQueueClosed = errors.New("job queue is closed")
)

// PolicyProvider supplies the current receiving policy
type PolicyProvider interface {
	// Policy returns a fresh snapshot; callers must not cache it across requests
	Policy() PolicyConfig
}

// JobQueue defines the interface for submitting email processing jobs
type JobQueue interface {
	// Enqueue submits a job, returning ErrInvalidEncoding when the
	// payload cannot be serialized
	Enqueue(ctx context.Context, job EmailJob) error

	// Len returns the number of jobs waiting, where the backend can tell
	Len(ctx context.Context) (int64, error)
}

// Reencoder converts a raw message from a legacy single-byte charset to UTF-8
type Reencoder interface {
	Latin1ToUTF8(raw []byte) ([]byte, error)
}
