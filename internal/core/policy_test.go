package core

import (
	"net/http"
	"testing"

	"github.com/mikey/mailgun-routes/internal/domainlist"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGateBlockedDomainPrecedesHeaderChecks(t *testing.T) {
	gate := NewGate(zap.NewNop())
	policy := basePolicy(SpamModeFlag)
	policy.BlockedDomains = domainlist.New("spam.example")

	d := gate.Evaluate("Bob <Bob@Spam.Example>", message(), policy)

	assert.False(t, d.Accepted)
	assert.Equal(t, ReasonDomainBlocked, d.Reason)
	assert.Equal(t, http.StatusNotAcceptable, d.Status)
	assert.Equal(t, "Sending domain spam.example is blocked", d.Message)
}

func TestGateBlockedDomainAppliesInModeNone(t *testing.T) {
	policy := basePolicy(SpamModeNone)
	policy.BlockedDomains = domainlist.Parse("spam.example|junk.example")

	d := NewGate(nil).Evaluate("bob@junk.example", message(), policy)
	assert.Equal(t, ReasonDomainBlocked, d.Reason)
}

func TestGateModeNoneSkipsHeaderChecks(t *testing.T) {
	d := NewGate(nil).Evaluate("alice@example.com", message(), basePolicy(SpamModeNone))
	assert.True(t, d.Accepted)
	assert.Equal(t, http.StatusOK, d.Status)
}

func TestGateMissingSpamHeaders(t *testing.T) {
	gate := NewGate(nil)
	tests := map[string][]byte{
		"both missing":  message("X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass"),
		"flag missing":  message("X-Mailgun-Sscore: 0.1", "X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass"),
		"score missing": message("X-Mailgun-Sflag: No", "X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass"),
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			for _, mode := range []SpamMode{SpamModeFlag, SpamModeScore} {
				d := gate.Evaluate("alice@example.com", raw, basePolicy(mode))
				assert.Equal(t, ReasonMissingSpamHeaders, d.Reason, "mode %s", mode)
				assert.Equal(t, "Missing spam headers", d.Message)
				assert.Equal(t, http.StatusNotAcceptable, d.Status)
			}
		})
	}
}

func TestGateDKIM(t *testing.T) {
	gate := NewGate(nil)
	spam := []string{"X-Mailgun-Sflag: No", "X-Mailgun-Sscore: 0.1", "X-Mailgun-Spf: Pass"}
	withDKIM := func(v string) []byte { return message(append(spam, "X-Mailgun-Dkim-Check-Result: "+v)...) }

	excluded := basePolicy(SpamModeFlag)
	excluded.DKIMExclusions = domainlist.New("example.com")
	plain := basePolicy(SpamModeFlag)

	t.Run("pass accepted regardless of exclusion", func(t *testing.T) {
		assert.True(t, gate.Evaluate("alice@example.com", withDKIM("Pass"), plain).Accepted)
		assert.True(t, gate.Evaluate("alice@example.com", withDKIM("Pass"), excluded).Accepted)
	})

	t.Run("fail rejected regardless of exclusion", func(t *testing.T) {
		for _, policy := range []PolicyConfig{plain, excluded} {
			d := gate.Evaluate("alice@example.com", withDKIM("Fail"), policy)
			assert.Equal(t, ReasonDKIMFailed, d.Reason)
			assert.Equal(t, "DKIM did not validate", d.Message)
		}
	})

	t.Run("absent rejected unless excluded", func(t *testing.T) {
		raw := message(spam...)
		assert.Equal(t, ReasonDKIMFailed, gate.Evaluate("alice@example.com", raw, plain).Reason)
		assert.True(t, gate.Evaluate("alice@example.com", raw, excluded).Accepted)
	})

	t.Run("exclusion matches sender domain case-insensitively", func(t *testing.T) {
		assert.True(t, gate.Evaluate("Alice@EXAMPLE.com", message(spam...), excluded).Accepted)
	})
}

func TestGateSPF(t *testing.T) {
	gate := NewGate(nil)
	spam := []string{"X-Mailgun-Sflag: No", "X-Mailgun-Sscore: 0.1", "X-Mailgun-Dkim-Check-Result: Pass"}
	withSPF := func(v string) []byte { return message(append(spam, "X-Mailgun-Spf: "+v)...) }

	strict := basePolicy(SpamModeFlag)
	lenient := basePolicy(SpamModeFlag)
	lenient.SPFNeutralPasses = true

	t.Run("pass accepted", func(t *testing.T) {
		assert.True(t, gate.Evaluate("alice@example.com", withSPF("Pass"), strict).Accepted)
	})

	t.Run("neutral depends on neutral passes", func(t *testing.T) {
		d := gate.Evaluate("alice@example.com", withSPF("Neutral"), strict)
		assert.Equal(t, ReasonSPFFailed, d.Reason)
		assert.Equal(t, "SPF did not validate", d.Message)

		assert.True(t, gate.Evaluate("alice@example.com", withSPF("Neutral"), lenient).Accepted)
		assert.True(t, gate.Evaluate("alice@example.com", withSPF("SoftFail"), lenient).Accepted)
	})

	t.Run("fail always rejected", func(t *testing.T) {
		assert.Equal(t, ReasonSPFFailed, gate.Evaluate("alice@example.com", withSPF("Fail"), strict).Reason)
		assert.Equal(t, ReasonSPFFailed, gate.Evaluate("alice@example.com", withSPF("Fail"), lenient).Reason)
	})

	t.Run("absent rejected unless excluded", func(t *testing.T) {
		raw := message(spam...)
		assert.Equal(t, ReasonSPFFailed, gate.Evaluate("alice@example.com", raw, lenient).Reason)

		excluded := strict
		excluded.SPFExclusions = domainlist.New("example.com")
		assert.True(t, gate.Evaluate("alice@example.com", raw, excluded).Accepted)
	})

	t.Run("exclusion does not excuse a present non-pass result", func(t *testing.T) {
		excluded := strict
		excluded.SPFExclusions = domainlist.New("example.com")
		assert.Equal(t, ReasonSPFFailed, gate.Evaluate("alice@example.com", withSPF("Neutral"), excluded).Reason)
	})
}

func TestGateDKIMCheckedBeforeSPF(t *testing.T) {
	raw := message("X-Mailgun-Sflag: No", "X-Mailgun-Sscore: 0.1",
		"X-Mailgun-Dkim-Check-Result: Fail", "X-Mailgun-Spf: Fail")
	d := NewGate(nil).Evaluate("alice@example.com", raw, basePolicy(SpamModeFlag))
	assert.Equal(t, ReasonDKIMFailed, d.Reason)
}

func TestGateFlagMode(t *testing.T) {
	gate := NewGate(nil)
	policy := basePolicy(SpamModeFlag)

	spam := message("X-Mailgun-Sflag: Yes", "X-Mailgun-Sscore: 0.1",
		"X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass")
	d := gate.Evaluate("alice@example.com", spam, policy)
	assert.Equal(t, ReasonSpamDetected, d.Reason)
	assert.Equal(t, "Spam detected", d.Message)
	assert.Equal(t, http.StatusNotAcceptable, d.Status)

	assert.True(t, gate.Evaluate("alice@example.com", message(cleanHeaders()...), policy).Accepted)

	// A high score alone does not matter in flag mode
	highScore := message("X-Mailgun-Sflag: No", "X-Mailgun-Sscore: 20.0",
		"X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass")
	assert.True(t, gate.Evaluate("alice@example.com", highScore, policy).Accepted)
}

func TestGateScoreModeBoundary(t *testing.T) {
	gate := NewGate(nil)
	policy := basePolicy(SpamModeScore)
	withScore := func(v string) []byte {
		return message("X-Mailgun-Sflag: Yes", "X-Mailgun-Sscore: "+v,
			"X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass")
	}

	assert.Equal(t, ReasonSpamDetected, gate.Evaluate("alice@example.com", withScore("5.0"), policy).Reason)
	assert.Equal(t, ReasonSpamDetected, gate.Evaluate("alice@example.com", withScore("12.3"), policy).Reason)
	assert.True(t, gate.Evaluate("alice@example.com", withScore("4.9"), policy).Accepted)
	assert.True(t, gate.Evaluate("alice@example.com", withScore("-1.5"), policy).Accepted)
}

func TestGateUnknownModeRunsHeaderChecksOnly(t *testing.T) {
	gate := NewGate(nil)
	policy := basePolicy(ParseSpamMode("Strict"))

	assert.Equal(t, ReasonMissingSpamHeaders, gate.Evaluate("alice@example.com", message(), policy).Reason)

	flagged := message("X-Mailgun-Sflag: Yes", "X-Mailgun-Sscore: 30",
		"X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass")
	assert.True(t, gate.Evaluate("alice@example.com", flagged, policy).Accepted)
}

func TestGateLogsRejectionsOnlyWhenEnabled(t *testing.T) {
	obs, logs := observer.New(zap.InfoLevel)
	gate := NewGate(zap.New(obs))

	policy := basePolicy(SpamModeFlag)
	gate.Evaluate("alice@example.com", message(), policy)
	entries := logs.TakeAll()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "alice@example.com", fields["sender"])
		assert.Equal(t, string(ReasonMissingSpamHeaders), fields["reason"])
	}

	policy.LogRejections = false
	d := gate.Evaluate("alice@example.com", message(), policy)
	assert.Equal(t, ReasonMissingSpamHeaders, d.Reason)
	assert.Empty(t, logs.TakeAll())
}

func TestGateLogsScoreAndThreshold(t *testing.T) {
	obs, logs := observer.New(zap.InfoLevel)
	gate := NewGate(zap.New(obs))

	raw := message("X-Mailgun-Sflag: No", "X-Mailgun-Sscore: 7.5",
		"X-Mailgun-Dkim-Check-Result: Pass", "X-Mailgun-Spf: Pass")
	gate.Evaluate("alice@example.com", raw, basePolicy(SpamModeScore))

	entries := logs.TakeAll()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, 7.5, fields["score"])
		assert.Equal(t, 5.0, fields["threshold"])
	}
}
