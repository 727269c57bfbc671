package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/mikey/mailgun-routes/internal/domainlist"
	"github.com/mikey/mailgun-routes/internal/utils"
	"go.uber.org/zap"
)

// Checker runs the policy gate on a single message and reports the outcome
type Checker struct {
	gate          *core.Gate
	policy        core.PolicyProvider
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	out           io.Writer
	verbose       bool
}

// NewChecker creates a new CLI checker
func NewChecker(
	gate *core.Gate,
	policy core.PolicyProvider,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	out io.Writer,
	verbose bool,
) *Checker {
	return &Checker{
		gate:          gate,
		policy:        policy,
		textProcessor: textProcessor,
		logger:        logger,
		out:           out,
		verbose:       verbose,
	}
}

// Check evaluates raw as if it had been posted by sender
func (c *Checker) Check(sender string, raw []byte) core.Decision {
	c.logger.Debug("Checking email", zap.String("sender", sender))

	policy := c.policy.Policy()
	signals := core.ExtractSignals(raw)

	fmt.Fprintf(c.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(c.out, "From: %s\n", sender)
	fmt.Fprintf(c.out, "Domain: %s\n", domainlist.DomainOf(sender))
	fmt.Fprintf(c.out, "Size: %d bytes\n", len(raw))
	if c.verbose {
		fmt.Fprintf(c.out, "\nPreview:\n%s\n", c.textProcessor.TruncateText(string(raw), 500))
	}

	fmt.Fprintf(c.out, "\n=== Relay Signals ===\n")
	fmt.Fprintf(c.out, "Spam flag: %s\n", describe(signals.SpamFlag))
	if signals.SpamScore != nil {
		fmt.Fprintf(c.out, "Spam score: %.1f\n", *signals.SpamScore)
	} else {
		fmt.Fprintf(c.out, "Spam score: absent\n")
	}
	fmt.Fprintf(c.out, "DKIM: %s\n", describe(signals.DKIMResult))
	fmt.Fprintf(c.out, "SPF: %s\n", describe(signals.SPFResult))

	fmt.Fprintf(c.out, "\n=== Policy ===\n")
	fmt.Fprintf(c.out, "Spam detection: %s\n", policy.SpamMode)
	if policy.SpamMode == core.SpamModeScore {
		fmt.Fprintf(c.out, "Score threshold: %.1f\n", policy.SpamScoreThreshold)
	}
	fmt.Fprintf(c.out, "Blocked domains: %s\n", strings.Join(policy.BlockedDomains.Domains(), ", "))
	fmt.Fprintf(c.out, "SPF neutral passes: %t\n", policy.SPFNeutralPasses)

	decision := c.gate.Evaluate(sender, raw, policy)

	fmt.Fprintf(c.out, "\n=== Result ===\n")
	if decision.Accepted {
		fmt.Fprintf(c.out, "Accepted (%d)\n", decision.Status)
	} else {
		fmt.Fprintf(c.out, "Rejected (%d): %s\n", decision.Status, decision.Message)
	}

	return decision
}

func describe[T ~string](v *T) string {
	if v == nil {
		return "absent"
	}
	return string(*v)
}
