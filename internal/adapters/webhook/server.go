package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReceivePath is the route the relay posts inbound messages to
const ReceivePath = "/mailgun/routes/receive_mime"

const shutdownTimeout = 15 * time.Second

// MessageReceiver runs the validation pipeline for one request
type MessageReceiver interface {
	Receive(ctx context.Context, req core.IncomingRequest) (core.Decision, error)
}

// Server implements the relay webhook over HTTP
type Server struct {
	receiver     MessageReceiver
	queue        core.JobQueue
	logger       *zap.Logger
	listenAddr   string
	maxBodySize  int64
	readTimeout  time.Duration
	writeTimeout time.Duration
	router       chi.Router
	server       *http.Server
}

// NewServer creates a new webhook server
func NewServer(
	receiver MessageReceiver,
	queue core.JobQueue,
	logger *zap.Logger,
	listenAddr string,
	maxBodySize int64,
	readTimeout time.Duration,
	writeTimeout time.Duration,
) *Server {
	s := &Server{
		receiver:     receiver,
		queue:        queue,
		logger:       logger,
		listenAddr:   listenAddr,
		maxBodySize:  maxBodySize,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
	s.router = s.routes()
	return s
}

// routes registers the webhook without any session or CSRF middleware;
// requests are authenticated by their signature alone.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post(ReceivePath, s.HandleReceiveMime)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts listening in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	s.logger.Info("Webhook server started", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Webhook server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.queue != nil {
		n, err := s.queue.Len(r.Context())
		if err != nil {
			s.logger.Warn("Failed to read queue length", zap.Error(err))
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
			return
		}
		resp["queued"] = n
	}
	s.writeJSON(w, http.StatusOK, resp)
}
