// Package queue contains job queue backends for accepted emails.
package queue

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/mikey/mailgun-routes/internal/core"
)

// encodeJob serializes a job for the wire. Processing workers read jobs as
// UTF-8 JSON, so a mail body with invalid sequences is refused instead of
// being silently rewritten with replacement characters.
func encodeJob(job core.EmailJob) ([]byte, error) {
	if !utf8.ValidString(job.Mail) {
		return nil, fmt.Errorf("job %s: %w", job.ID, core.ErrInvalidEncoding)
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}
	return payload, nil
}
