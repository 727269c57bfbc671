package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/mailgun-routes/internal/core"
	"go.uber.org/zap"
)

// MySQLQueue is an outbox table in MySQL polled by the processing workers
type MySQLQueue struct {
	db     *sql.DB
	name   string
	logger *zap.Logger
}

// NewMySQLQueue creates a new MySQL queue
func NewMySQLQueue(dsn, name string, logger *zap.Logger) (*MySQLQueue, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	q, err := NewMySQLQueueWithDB(db, name, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return q, nil
}

// NewMySQLQueueWithDB creates a MySQL queue on an open connection pool
func NewMySQLQueueWithDB(db *sql.DB, name string, logger *zap.Logger) (*MySQLQueue, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS email_jobs (
			id CHAR(36) PRIMARY KEY,
			queue VARCHAR(64) NOT NULL,
			payload LONGTEXT CHARACTER SET utf8mb4 NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL,
			INDEX idx_email_jobs_pending (queue, status)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLQueue{
		db:     db,
		name:   name,
		logger: logger,
	}, nil
}

// Enqueue inserts the encoded job as pending
func (q *MySQLQueue) Enqueue(ctx context.Context, job core.EmailJob) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO email_jobs (id, queue, payload, status, created_at)
		VALUES (?, ?, ?, 'pending', ?)
	`, job.ID, q.name, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	q.logger.Debug("Job enqueued", zap.String("job_id", job.ID), zap.String("queue", q.name))
	return nil
}

// Len counts pending jobs
func (q *MySQLQueue) Len(ctx context.Context) (int64, error) {
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
func (q *MySQLQueue) Stop() {
	if err := q.db.Close(); err != nil {
		q.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
