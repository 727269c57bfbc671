package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook pipeline metrics
var (
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailgun_routes_requests_total",
			Help: "Total number of inbound webhook requests by outcome",
		},
		[]string{"outcome"},
	)

	DispatchReencodesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailgun_routes_dispatch_reencodes_total",
			Help: "Total number of messages re-encoded from ISO-8859-1 before resubmission",
		},
	)

	DispatchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailgun_routes_dispatch_failures_total",
			Help: "Total number of messages that could not be submitted for processing",
		},
	)
)

// Outcome labels besides the rejection reasons
const (
	// OutcomeAccepted labels requests forwarded for processing
	OutcomeAccepted = "accepted"
	// OutcomeInternalError labels accepted requests that could not be dispatched
	OutcomeInternalError = "internal_error"
)
