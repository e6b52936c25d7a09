package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"training-enrichment/internal/infra/worker"
	"training-enrichment/internal/usecase"
)

// Server exposes the processor trigger endpoint, the session status
// projection, and the operational surface (stats, health, metrics).
type Server struct {
	enrichUC  usecase.EnrichmentUseCase
	processor *worker.EnrichmentProcessor
	apiKey    string
	log       *zerolog.Logger
	server    *http.Server
}

func NewServer(enrichUC usecase.EnrichmentUseCase, processor *worker.EnrichmentProcessor, apiKey string, logger *zerolog.Logger) *Server {
	return &Server{
		enrichUC:  enrichUC,
		processor: processor,
		apiKey:    apiKey,
		log:       logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(RequestLog(s.log))

	r.Post("/v1/enrichment-processor", s.handleProcess)
	r.Route("/v1/sessions/{sessionID}/enrichment", func(r chi.Router) {
		r.Post("/", s.handleEnqueue)
		r.Get("/", s.handleStatus)
	})
	r.With(BearerAuth(s.apiKey)).Get("/v1/enrichment/stats", s.handleStats)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start(port int) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
