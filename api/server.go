// Package api provides the HTTP REST API server for fredseries.
//
// It exposes series retrieval over REST and WebSocket, the list of
// configured sources, health and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/client"
	"github.com/seenimoa/fredseries/internal/config"
	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/internal/provider"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	registry *provider.Registry
	log      zerolog.Logger
	gatherer prometheus.Gatherer
	opts     []client.Option

	mu      sync.Mutex
	clients map[string]*client.Client
}

// NewServer creates a configured API server with all routes and middleware.
// Series are fetched through the fetchers in reg; gatherer backs /metrics
// and may be nil to disable it. opts are applied to every client.
func NewServer(cfg *config.Config, reg *provider.Registry, log zerolog.Logger, gatherer prometheus.Gatherer, opts ...client.Option) *Server {
	srv := &Server{
		cfg:      cfg,
		registry: reg,
		log:      log.With().Str("component", "api").Logger(),
		gatherer: gatherer,
		opts:     opts,
		clients:  make(map[string]*client.Client),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully once
// ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket: long-lived, so outside the request timeout
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.requestTimeout()))

			// Health (also available at /health)
			r.Get("/health", s.handleHealth)

			// Sources
			r.Get("/providers", s.handleProviders)

			// Series
			r.Get("/series/{id}", s.handleGetSeries)
			r.Post("/series", s.handlePostSeries)
		})
	})

	return r
}

// requestTimeout bounds a request by the fetch timeout plus headroom for
// parsing and encoding.
func (s *Server) requestTimeout() time.Duration {
	if s.cfg.FRED.Timeout > 0 {
		return s.cfg.FRED.Timeout + 5*time.Second
	}
	return 30 * time.Second
}

// requestLogger logs one line per request through zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("http_request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// clientFor returns the client bound to the named source, creating it on
// first use. An empty name selects the registry default.
func (s *Server) clientFor(source string) (*client.Client, error) {
	f, err := s.registry.Get(source)
	if err != nil {
		return nil, err
	}
	name := f.Info().Name

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[name]
	if !ok {
		c = client.New(f, s.log, s.opts...)
		s.clients[name] = c
	}
	return c, nil
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"` // error kind, e.g. "NOT_FOUND"
}

// SeriesRequest documents the body for POST /api/v1/series. The handler
// decodes into a generic map so that wrongly typed fields are reported by
// the validator rather than by the JSON decoder.
type SeriesRequest struct {
	SeriesID  string   `json:"series_id"`
	Dates     []string `json:"dates,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Source    string   `json:"source,omitempty"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Source  string `json:"source"`
	Sources int    `json:"sources"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:  "ok",
			Source:  s.registry.Default(),
			Sources: len(s.registry.List()),
		},
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.registry.List()})
}

// handleGetSeries serves GET /api/v1/series/{id}. Query parameters:
// start_date, end_date, dates (comma separated) and source.
func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := client.Params{SeriesID: chi.URLParam(r, "id")}
	if q.Has("dates") {
		p.Dates = splitList(q.Get("dates"))
	}
	if q.Has("start_date") {
		p.StartDate = q.Get("start_date")
	}
	if q.Has("end_date") {
		p.EndDate = q.Get("end_date")
	}
	s.serveSeries(w, r, q.Get("source"), p)
}

// handlePostSeries serves POST /api/v1/series with a SeriesRequest body.
func (s *Server) handlePostSeries(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	p := client.Params{
		SeriesID:  body["series_id"],
		Dates:     body["dates"],
		StartDate: body["start_date"],
		EndDate:   body["end_date"],
	}
	source, _ := body["source"].(string)
	s.serveSeries(w, r, source, p)
}

func (s *Server) serveSeries(w http.ResponseWriter, r *http.Request, source string, p client.Params) {
	c, err := s.clientFor(source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := c.GetSeries(r.Context(), p)
	if err != nil {
		writeSeriesError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res})
}

// ============================================================
// Helpers
// ============================================================

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindTypeMismatch, errs.KindInvalidArgument:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConnectivity, errs.KindMalformedPayload:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func writeSeriesError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), APIResponse{
		Success: false,
		Error:   err.Error(),
		Kind:    string(errs.KindOf(err)),
	})
}
