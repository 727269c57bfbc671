package core

import (
	"regexp"
	"strconv"
	"strings"
)

// Relay headers are matched on the raw message text rather than a parsed
// header map so that folded or duplicated headers behave like the relay's
// own route scripts.
var (
	spamFlagPattern  = regexp.MustCompile(`(?im)^X-Mailgun-Sflag: (No|Yes)`)
	spamScorePattern = regexp.MustCompile(`(?im)^X-Mailgun-Sscore: (-?\d{1,2}\.?\d?)`)
	dkimPattern      = regexp.MustCompile(`(?im)^X-Mailgun-Dkim-Check-Result: (Fail|Pass)`)
	spfPattern       = regexp.MustCompile(`(?im)^X-Mailgun-Spf: (\w+)`)
)

// ExtractSignals finds the relay's spam, DKIM and SPF headers in raw
func ExtractSignals(raw []byte) HeaderSignals {
	var signals HeaderSignals

	if m := spamFlagPattern.FindSubmatch(raw); m != nil {
		flag := SpamFlag(strings.ToLower(string(m[1])))
		signals.SpamFlag = &flag
	}

	if m := spamScorePattern.FindSubmatch(raw); m != nil {
		if score, err := strconv.ParseFloat(string(m[1]), 64); err == nil {
			signals.SpamScore = &score
		}
	}

	if m := dkimPattern.FindSubmatch(raw); m != nil {
		result := DKIMResult(strings.ToLower(string(m[1])))
		signals.DKIMResult = &result
	}

	if m := spfPattern.FindSubmatch(raw); m != nil {
		result := strings.ToLower(string(m[1]))
		signals.SPFResult = &result
	}

	return signals
}

// HasSpamHeaders reports whether both the spam flag and score were found
func (s HeaderSignals) HasSpamHeaders() bool {
	return s.SpamFlag != nil && s.SpamScore != nil
}
