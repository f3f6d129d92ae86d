package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/emxanuel/cybership-test/internal/telemetry"
	"github.com/emxanuel/cybership-test/pkg/carrier"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the rate aggregation service.
type Server struct {
	port     int
	registry *carrier.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *carrier.Registry, logger *otelzap.Logger) *Server {
	return NewWithMetrics(cfg, registry, logger, telemetry.NewMetrics())
}

// NewWithMetrics creates a server with externally constructed metrics.
func NewWithMetrics(cfg Config, registry *carrier.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/carriers", s.handleCarriers)
	mux.HandleFunc("POST /api/rates", s.handleRates)
	mux.HandleFunc("POST /api/rates/{carrier}", s.handleRateFrom)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"carriers": s.registry.Names()})
}

type errorEntry struct {
	Carrier string `json:"carrier"`
	Message string `json:"message"`
}

type ratesResponse struct {
	Quotes []carrier.CarrierQuote `json:"quotes"`
	Errors []errorEntry           `json:"errors,omitempty"`
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req carrier.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	result, err := s.registry.GetRates(r.Context(), req)
	if err != nil {
		// Only validation failures surface here; nothing was dispatched.
		writeError(w, http.StatusBadRequest, err.Error())
		s.metrics.RecordRequest("get_rates", "all", "invalid", time.Since(start).Seconds())
		return
	}

	resp := ratesResponse{Quotes: result.Quotes}
	for _, ce := range result.Errors {
		resp.Errors = append(resp.Errors, errorEntry{Carrier: ce.Carrier, Message: ce.Err.Error()})
		s.metrics.RecordError(ce.Carrier, errorType(ce.Err))
	}
	s.metrics.RecordRequest("get_rates", "all", "ok", time.Since(start).Seconds())

	s.logger.Info("Aggregated rates",
		zap.Int("quotes", len(result.Quotes)),
		zap.Int("errors", len(result.Errors)),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRateFrom(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.PathValue("carrier")

	var req carrier.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	quote, err := s.registry.GetRateFrom(r.Context(), name, req)
	if err != nil {
		var verr *carrier.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, err.Error())
			s.metrics.RecordRequest("get_rate_from", name, "invalid", time.Since(start).Seconds())
		case errors.Is(err, carrier.ErrUnknownCarrier):
			writeError(w, http.StatusNotFound, err.Error())
			s.metrics.RecordRequest("get_rate_from", name, "not_found", time.Since(start).Seconds())
		default:
			s.logger.Error("Carrier rate lookup failed", zap.String("carrier", name), zap.Error(err))
			s.metrics.RecordError(name, errorType(err))
			s.metrics.RecordRequest("get_rate_from", name, "error", time.Since(start).Seconds())
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	s.metrics.RecordRequest("get_rate_from", name, "ok", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, carrier.CarrierQuote{Carrier: name, Quote: quote})
}

func errorType(err error) string {
	var (
		transportErr *carrier.TransportError
		tokenErr     *carrier.TokenError
		apiErr       *carrier.APIError
	)
	switch {
	case errors.As(err, &tokenErr):
		return "token"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "other"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
