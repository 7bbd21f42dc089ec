// Package dashboard serves the latest scan reports over a small JSON API.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/mhalpert/spreadscout/internal/scanner"
)

// Server exposes scan results over HTTP. Reports are replaced wholesale
// after each scan; readers always see a complete batch.
type Server struct {
	router *chi.Mux
	server *http.Server
	logger *logrus.Logger
	addr   string

	mu      sync.RWMutex
	reports []*scanner.Report
}

// Config holds the dashboard server settings.
type Config struct {
	Addr string
}

// NewServer builds the server and registers its routes.
func NewServer(cfg Config, logger *logrus.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		addr:   cfg.Addr,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/reports", s.handleGetReports)
	s.router.Get("/api/reports/{id}", s.handleGetReport)
	s.router.Get("/api/best", s.handleGetBest)
}

// SetReports replaces the published batch with the latest scan output.
func (s *Server) SetReports(reports []*scanner.Report) {
	s.mu.Lock()
	s.reports = reports
	s.mu.Unlock()
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infof("Starting dashboard server on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (s *Server) handleGetReports(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	reports := s.reports
	s.mu.RUnlock()

	if reports == nil {
		reports = []*scanner.Report{}
	}
	s.writeJSON(w, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, report := range s.reports {
		if report.ID == id {
			s.writeJSON(w, report)
			return
		}
	}
	http.Error(w, "report not found", http.StatusNotFound)
}

// handleGetBest returns the highest scoring candidate across all published
// reports.
func (s *Server) handleGetBest(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *scanner.Report
	for _, report := range s.reports {
		if report.Best == nil {
			continue
		}
		if best == nil || report.Best.Score > best.Best.Score {
			best = report
		}
	}
	if best == nil {
		http.Error(w, "no candidates published", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]any{
		"report_id": best.ID,
		"template":  best.Template,
		"candidate": best.Best,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
