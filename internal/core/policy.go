package core

import (
	"go.uber.org/zap"

	"github.com/mikey/mailgun-routes/internal/domainlist"
)

// Gate applies the sender-domain and relay-header policy to a message
type Gate struct {
	logger *zap.Logger
}

// NewGate creates a new policy gate
func NewGate(logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{logger: logger}
}

// Evaluate checks a message against policy. The first failing check decides
// the outcome: blocked domain, missing spam headers, DKIM, SPF, spam signal.
func (g *Gate) Evaluate(sender string, raw []byte, policy PolicyConfig) Decision {
	// Derived once; every list below is checked against this value
	domain := domainlist.DomainOf(sender)
	log := g.rejectionLogger(policy, sender, domain)

	if policy.BlockedDomains.Contains(domain) {
		log.Info("Rejected mail from blocked domain", zap.String("reason", string(ReasonDomainBlocked)))
		return rejectDomain(domain)
	}

	if policy.SpamMode == SpamModeNone {
		return Accept()
	}

	signals := ExtractSignals(raw)

	if !signals.HasSpamHeaders() {
		log.Info("Rejected mail without spam headers",
			zap.String("reason", string(ReasonMissingSpamHeaders)),
			zap.Bool("has_flag", signals.SpamFlag != nil),
			zap.Bool("has_score", signals.SpamScore != nil))
		return rejectMissingSpamHeaders()
	}

	if !dkimAcceptable(signals, policy, domain) {
		log.Info("Rejected mail failing DKIM",
			zap.String("reason", string(ReasonDKIMFailed)),
			zap.String("dkim", optional(signals.DKIMResult)))
		return rejectDKIM()
	}

	if !spfAcceptable(signals, policy, domain) {
		log.Info("Rejected mail failing SPF",
			zap.String("reason", string(ReasonSPFFailed)),
			zap.String("spf", optional(signals.SPFResult)),
			zap.Bool("neutral_passes", policy.SPFNeutralPasses))
		return rejectSPF()
	}

	switch policy.SpamMode {
	case SpamModeFlag:
		if *signals.SpamFlag == SpamFlagYes {
			log.Info("Rejected mail flagged as spam",
				zap.String("reason", string(ReasonSpamDetected)),
				zap.String("flag", string(*signals.SpamFlag)))
			return rejectSpam()
		}
	case SpamModeScore:
		if *signals.SpamScore >= policy.SpamScoreThreshold {
			log.Info("Rejected mail over spam score threshold",
				zap.String("reason", string(ReasonSpamDetected)),
				zap.Float64("score", *signals.SpamScore),
				zap.Float64("threshold", policy.SpamScoreThreshold))
			return rejectSpam()
		}
	}

	return Accept()
}

// dkimAcceptable: a present Pass always satisfies, a present Fail never does,
// an absent header only for excluded domains.
func dkimAcceptable(s HeaderSignals, policy PolicyConfig, domain string) bool {
	if s.DKIMResult == nil {
		return policy.DKIMExclusions.Contains(domain)
	}
	return *s.DKIMResult == DKIMPass
}

// spfAcceptable: an absent header passes only for excluded domains. Fail is
// always rejected; any other non-pass value passes only when the operator
// treats neutral results as acceptable.
func spfAcceptable(s HeaderSignals, policy PolicyConfig, domain string) bool {
	if s.SPFResult == nil {
		return policy.SPFExclusions.Contains(domain)
	}
	switch *s.SPFResult {
	case "pass":
		return true
	case "fail":
		return false
	default:
		return policy.SPFNeutralPasses
	}
}

func (g *Gate) rejectionLogger(policy PolicyConfig, sender, domain string) *zap.Logger {
	if !policy.LogRejections {
		return zap.NewNop()
	}
	return g.logger.With(zap.String("sender", sender), zap.String("domain", domain))
}

func optional[T ~string](v *T) string {
	if v == nil {
		return "absent"
	}
	return string(*v)
}
