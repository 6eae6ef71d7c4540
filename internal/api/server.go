// Package api exposes the monitoring engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/calendar"
	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/marketdata"
	"github.com/quantfarer/vigil/internal/metrics"
	"github.com/quantfarer/vigil/internal/position"
	"github.com/quantfarer/vigil/internal/scoring"
)

// RecommendationSource exposes the latest scan result.
type RecommendationSource interface {
	LatestRecommendations() ([]core.Recommendation, time.Time, bool)
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	LookbackDays int
	MetricsPath  string
}

// Deps are the collaborators the handlers run against. Recommendations
// and Metrics may be nil; a nil Validator falls back to the defaults.
type Deps struct {
	Store           position.Store
	Market          marketdata.Provider
	Calendar        *calendar.Calendar
	Recommendations RecommendationSource
	Metrics         *metrics.Registry
	Validator       *scoring.ScalpValidator
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Deps
	lookback   int
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Deps, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 260
	}
	if deps.Validator == nil {
		deps.Validator = scoring.DefaultScalpValidator()
	}

	s := &Server{
		logger:   logger,
		mux:      mux,
		deps:     deps,
		lookback: lookback,
	}

	s.setupRoutes(cfg.MetricsPath)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(metricsPath string) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/analysis/{symbol}", s.handleAnalysis)
	s.mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	s.mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	s.mux.HandleFunc("POST /api/portfolio", s.handleBuy)
	s.mux.HandleFunc("DELETE /api/portfolio/{symbol}", s.handleClose)
	s.mux.HandleFunc("GET /api/portfolio/sell-signals", s.handleSellSignals)

	if s.deps.Metrics != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		s.mux.Handle("GET "+metricsPath,
			promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the routing handler, used in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
