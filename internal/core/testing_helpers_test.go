package core

import (
	"context"
	"strings"

	"github.com/mikey/mailgun-routes/internal/domainlist"
)

const testSecret = "key-3ax6xnjp29jd6fds4gc373sgvjxteol0"

type staticPolicy PolicyConfig

func (p staticPolicy) Policy() PolicyConfig { return PolicyConfig(p) }

type fakeQueue struct {
	errs []error
	jobs []EmailJob
}

func (q *fakeQueue) Enqueue(ctx context.Context, job EmailJob) error {
	q.jobs = append(q.jobs, job)
	if len(q.errs) > 0 {
		err := q.errs[0]
		q.errs = q.errs[1:]
		return err
	}
	return nil
}

func (q *fakeQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}

func message(headers ...string) []byte {
	base := []string{
		"From: Alice <alice@example.com>",
		"To: support@forum.example",
		"Subject: Hello",
	}
	return []byte(strings.Join(append(base, headers...), "\r\n") + "\r\n\r\nHello there.\r\n")
}

func cleanHeaders() []string {
	return []string{
		"X-Mailgun-Sflag: No",
		"X-Mailgun-Sscore: 0.3",
		"X-Mailgun-Dkim-Check-Result: Pass",
		"X-Mailgun-Spf: Pass",
	}
}

func basePolicy(mode SpamMode) PolicyConfig {
	return PolicyConfig{
		SharedSecret:       testSecret,
		SpamMode:           mode,
		SpamScoreThreshold: 5.0,
		DKIMExclusions:     domainlist.New(),
		SPFExclusions:      domainlist.New(),
		BlockedDomains:     domainlist.New(),
		LogRejections:      true,
	}
}

func signedRequest(from string, raw []byte) IncomingRequest {
	ts, token := "1700000000", "f2b1c0a7d3e94e6b8a1c5d7e9f0a2b4c6d8e0f1a3b5c7d9e"
	return IncomingRequest{
		Timestamp:     ts,
		Token:         token,
		Signature:     Sign(testSecret, ts, token),
		SenderAddress: from,
		RawMessage:    raw,
	}
}
