// Package api serves the prize data service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/nobel-prize-cache/pkg/logging"
	"github.com/Sternrassler/nobel-prize-cache/pkg/metrics"
	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
	"github.com/Sternrassler/nobel-prize-cache/pkg/stats"
)

// PrizeService is the part of *service.Service the handlers use.
type PrizeService interface {
	Prizes(ctx context.Context, params url.Values) ([]prize.Prize, error)
	Laureates(ctx context.Context, params url.Values) (json.RawMessage, error)
	Statistics(ctx context.Context, params url.Values) (stats.Statistics, error)
}

// Options configures the HTTP surface.
type Options struct {
	// Name and Version are reported by the info endpoint
	Name    string
	Version string

	// StaticDir, when set, is served at / and the info document moves to /api
	StaticDir string
}

// Server wires HTTP routes onto the prize service.
type Server struct {
	svc    PrizeService
	opts   Options
	logger zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(svc PrizeService, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "Nobel Prize Wrapper API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	return &Server{
		svc:    svc,
		opts:   opts,
		logger: logging.NewLogger(logging.ComponentAPI),
	}
}

// Handler returns the complete route tree wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/prizes", s.handlePrizes)
	mux.HandleFunc("GET /api/laureates", s.handleLaureates)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	if s.opts.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.opts.StaticDir)))
	} else {
		mux.HandleFunc("GET /{$}", s.handleInfo)
	}

	return s.withCORS(s.withRequestLogging(mux))
}

type infoResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Name:    s.opts.Name,
		Version: s.opts.Version,
		Endpoints: map[string]string{
			"prizes":    "/api/prizes",
			"laureates": "/api/laureates",
			"stats":     "/api/stats",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePrizes handles GET /api/prizes. Query parameters are forwarded
// upstream unchanged.
func (s *Server) handlePrizes(w http.ResponseWriter, r *http.Request) {
	prizes, err := s.svc.Prizes(r.Context(), r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, "Failed to fetch prizes", err)
		return
	}
	writeJSON(w, http.StatusOK, prizes)
}

// handleLaureates handles GET /api/laureates and returns the upstream
// payload as received.
func (s *Server) handleLaureates(w http.ResponseWriter, r *http.Request) {
	payload, err := s.svc.Laureates(r.Context(), r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, "Failed to fetch laureates", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Statistics(r.Context(), r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, "Failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
