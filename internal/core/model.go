package core

import (
	"strings"

	"github.com/mikey/mailgun-routes/internal/domainlist"
)

// IncomingRequest holds the fields posted by the relay for one inbound message
type IncomingRequest struct {
	Timestamp     string
	Token         string
	Signature     string
	SenderAddress string
	RawMessage    []byte
}

// SpamMode selects which relay spam signal the gate enforces
type SpamMode string

const (
	SpamModeNone  SpamMode = "none"
	SpamModeFlag  SpamMode = "flag"
	SpamModeScore SpamMode = "score"
)

// ParseSpamMode normalizes a configured mode string. Unknown values are kept
// as-is: they enable the header checks but no spam-signal check.
func ParseSpamMode(s string) SpamMode {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SpamModeNone
	}
	return SpamMode(s)
}

// PolicyConfig is a snapshot of the receiving policy, read once per request
type PolicyConfig struct {
	SharedSecret       string
	SpamMode           SpamMode
	SpamScoreThreshold float64
	DKIMExclusions     domainlist.Set
	SPFExclusions      domainlist.Set
	BlockedDomains     domainlist.Set
	SPFNeutralPasses   bool
	LogRejections      bool
}

// ReceivingEnabled reports whether a shared secret is configured
func (p PolicyConfig) ReceivingEnabled() bool {
	return p.SharedSecret != ""
}

// SpamFlag is the relay's binary spam verdict
type SpamFlag string

const (
	SpamFlagYes SpamFlag = "yes"
	SpamFlagNo  SpamFlag = "no"
)

// DKIMResult is the relay's DKIM check outcome
type DKIMResult string

const (
	DKIMPass DKIMResult = "pass"
	DKIMFail DKIMResult = "fail"
)

// HeaderSignals are the relay-computed signals found in the raw message.
// A nil pointer means the header was absent.
type HeaderSignals struct {
	SpamFlag   *SpamFlag
	SpamScore  *float64
	DKIMResult *DKIMResult
	// SPFResult is the lowercased raw token, e.g. "pass", "neutral", "softfail"
	SPFResult *string
}

// EmailJob is the payload submitted to the asynchronous processing system
type EmailJob struct {
	ID               string `json:"id"`
	Name             string `json:"job"`
	Mail             string `json:"mail"`
	RetryOnRateLimit bool   `json:"retry_on_rate_limit"`
	Source           string `json:"source"`
}

const (
	// JobProcessEmail names the downstream job that imports the message
	JobProcessEmail = "process_email"
	// SourceHandleMail tags jobs created by the webhook path
	SourceHandleMail = "handle_mail"
)
