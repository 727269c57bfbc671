package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/mailgun-routes/internal/metrics"
)

// ReceiverService runs the inbound pipeline: authenticate, gate, dispatch
type ReceiverService struct {
	policy     PolicyProvider
	gate       *Gate
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewReceiverService creates a new receiver service
func NewReceiverService(
	policy PolicyProvider,
	gate *Gate,
	dispatcher *Dispatcher,
	logger *zap.Logger,
) *ReceiverService {
	return &ReceiverService{
		policy:     policy,
		gate:       gate,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Receive validates req and, when accepted, submits it for processing.
// Rejections are returned as decisions; the error is non-nil only when an
// accepted message could not be dispatched.
func (s *ReceiverService) Receive(ctx context.Context, req IncomingRequest) (Decision, error) {
	decision := s.decide(req)
	if !decision.Accepted {
		metrics.WebhookRequestsTotal.WithLabelValues(string(decision.Reason)).Inc()
		return decision, nil
	}

	if err := s.dispatcher.Dispatch(ctx, req.RawMessage); err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues(metrics.OutcomeInternalError).Inc()
		s.logger.Error("Failed to dispatch email",
			zap.String("sender", req.SenderAddress),
			zap.Error(err))
		return Decision{}, err
	}

	metrics.WebhookRequestsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	s.logger.Debug("Accepted email", zap.String("sender", req.SenderAddress))
	return decision, nil
}

// decide evaluates authentication and policy without side effects besides logging
func (s *ReceiverService) decide(req IncomingRequest) Decision {
	policy := s.policy.Policy()

	if !policy.ReceivingEnabled() {
		return rejectDisabled()
	}

	if field := missingField(req); field != "" {
		return rejectMalformed(field)
	}

	if !Authenticate(req, policy.SharedSecret) {
		if policy.LogRejections {
			s.logger.Info("Rejected request with invalid signature",
				zap.String("sender", req.SenderAddress),
				zap.String("reason", string(ReasonSignatureInvalid)))
		}
		return rejectSignature()
	}

	return s.gate.Evaluate(req.SenderAddress, req.RawMessage, policy)
}
