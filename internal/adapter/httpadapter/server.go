package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// maxRequestBytes caps the size of a route request body.
const maxRequestBytes = 64 << 10

// Builder produces a briefing for a route request.
type Builder interface {
	Build(ctx context.Context, req domain.RouteRequest) (domain.Briefing, error)
}

// Server exposes the briefing endpoint plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	builder    Builder
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// POST /v1/briefings routes. WriteTimeout must outlast the FAA fetch deadline,
// so it is derived from buildTimeout.
func NewServer(addr string, ready sharedobs.ReadinessChecker, builder Builder, buildTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: buildTimeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
		builder: builder,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/briefings", s.handleBriefing)

	return s
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	var req domain.RouteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":      "decode route request: " + err.Error(),
			"error_kind": "invalid_parameter",
		})
		return
	}

	b, err := s.builder.Build(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Debug("client went away", "request_id", req.RequestID)
			return
		}
		s.logger.Warn("briefing failed", "request_id", req.RequestID, "error", err)
		sharedobs.WriteJSON(w, statusFor(err), domain.FailedBriefing(req, err))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, b)
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTransport),
		errors.Is(err, domain.ErrUnexpectedResponseFormat),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnexpectedRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
