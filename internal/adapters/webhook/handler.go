package webhook

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/mailgun-routes/internal/core"
	"go.uber.org/zap"
)

// Form fields posted by the relay
const (
	fieldTimestamp = "timestamp"
	fieldToken     = "token"
	fieldSignature = "signature"
	fieldBodyMIME  = "body-mime"
	fieldFrom      = "from"
)

// HandleReceiveMime accepts a relay delivery and maps the pipeline outcome
// to the response contract
func (s *Server) HandleReceiveMime(w http.ResponseWriter, r *http.Request) {
	if s.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)
	}

	if err := r.ParseMultipartForm(s.maxBodySize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.logger.Debug("Failed to parse form", zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	req := core.IncomingRequest{
		Timestamp:     r.PostForm.Get(fieldTimestamp),
		Token:         r.PostForm.Get(fieldToken),
		Signature:     r.PostForm.Get(fieldSignature),
		SenderAddress: r.PostForm.Get(fieldFrom),
		RawMessage:    []byte(r.PostForm.Get(fieldBodyMIME)),
	}

	decision, err := s.receiver.Receive(r.Context(), req)
	if err != nil {
		s.logger.Error("Failed to process inbound email",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !decision.Accepted {
		s.writeError(w, decision.Status, decision.Message)
		return
	}

	s.writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
