package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/mailgun-routes/internal/core"
	"go.uber.org/zap"
)

// SQLiteQueue is an outbox table in SQLite polled by the processing workers
type SQLiteQueue struct {
	db     *sql.DB
	name   string
	logger *zap.Logger
}

// NewSQLiteQueue creates a new SQLite queue
func NewSQLiteQueue(dbPath, name string, logger *zap.Logger) (*SQLiteQueue, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS email_jobs (
			id TEXT PRIMARY KEY,
			queue TEXT NOT NULL,
			payload TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_email_jobs_pending ON email_jobs(queue, status)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteQueue{
		db:     db,
		name:   name,
		logger: logger,
	}, nil
}

// Enqueue inserts the encoded job as pending
func (q *SQLiteQueue) Enqueue(ctx context.Context, job core.EmailJob) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO email_jobs (id, queue, payload, status, created_at)
		VALUES (?, ?, ?, 'pending', ?)
	`, job.ID, q.name, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	q.logger.Debug("Job enqueued", zap.String("job_id", job.ID), zap.String("queue", q.name))
	return nil
}

// Len counts pending jobs
func (q *SQLiteQueue) Len(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM email_jobs WHERE queue = ? AND status = 'pending'
	`, q.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

// Stop closes the database connection
func (q *SQLiteQueue) Stop() {
	if err := q.db.Close(); err != nil {
		q.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
