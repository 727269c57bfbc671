package core

import (
	"fmt"
	"net/http"
)

// Reason identifies why a request was rejected
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonReceivingDisabled  Reason = "receiving_disabled"
	ReasonMalformedRequest   Reason = "malformed_request"
	ReasonSignatureInvalid   Reason = "signature_invalid"
	ReasonDomainBlocked      Reason = "domain_blocked"
	ReasonMissingSpamHeaders Reason = "missing_spam_headers"
	ReasonDKIMFailed         Reason = "dkim_failed"
	ReasonSPFFailed          Reason = "spf_failed"
	ReasonSpamDetected       Reason = "spam_detected"
)

// Decision is the terminal outcome of the validation pipeline
type Decision struct {
	Accepted bool
	Reason   Reason
	Status   int
	Message  string
}

// Accept returns the accepting decision
func Accept() Decision {
	return Decision{Accepted: true, Status: http.StatusOK}
}

// Reject returns a rejecting decision with the status and message for reason
func Reject(reason Reason, message string) Decision {
	return Decision{Reason: reason, Status: reason.Status(), Message: message}
}

// Status returns the HTTP status code for the reason
func (r Reason) Status() int {
	switch r {
	case ReasonNone:
		return http.StatusOK
	case ReasonReceivingDisabled:
		return http.StatusServiceUnavailable
	case ReasonMalformedRequest:
		return http.StatusBadRequest
	case ReasonSignatureInvalid:
		return http.StatusUnauthorized
	default:
		return http.StatusNotAcceptable
	}
}

func rejectDisabled() Decision {
	return Reject(ReasonReceivingDisabled, "Receiving disabled")
}

func rejectMalformed(field string) Decision {
	return Reject(ReasonMalformedRequest, fmt.Sprintf("param is missing or the value is empty: %s", field))
}

func rejectSignature() Decision {
	return Reject(ReasonSignatureInvalid, "Signature invalid")
}

func rejectDomain(domain string) Decision {
	return Reject(ReasonDomainBlocked, fmt.Sprintf("Sending domain %s is blocked", domain))
}

func rejectMissingSpamHeaders() Decision {
	return Reject(ReasonMissingSpamHeaders, "Missing spam headers")
}

func rejectDKIM() Decision {
	return Reject(ReasonDKIMFailed, "DKIM did not validate")
}

func rejectSPF() Decision {
	return Reject(ReasonSPFFailed, "SPF did not validate")
}

func rejectSpam() Decision {
	return Reject(ReasonSpamDetected, "Spam detected")
}
