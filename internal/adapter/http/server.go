package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/waterpoints-service/internal/catalog"
	"github.com/couchcryptid/waterpoints-service/internal/domain"
	"github.com/couchcryptid/waterpoints-service/internal/observability"
)

// CatalogReader returns the latest published catalog.
type CatalogReader interface {
	Snapshot() catalog.Snapshot
}

// ReportLister reads stored reports, newest first.
type ReportLister interface {
	ListReports(ctx context.Context) ([]domain.Report, error)
}

// ReportSubmitter stores a report for a selected point.
type ReportSubmitter interface {
	Submit(ctx context.Context, f domain.Feature, issueType string) (domain.Report, error)
}

// QRRenderer encodes content as a PNG QR code.
type QRRenderer interface {
	PNG(content string) ([]byte, error)
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Catalog   CatalogReader
	Reports   ReportLister
	Submitter ReportSubmitter
	QR        QRRenderer
	Ready     sharedobs.ReadinessChecker
	Metrics   *observability.Metrics
	// BaseURL is the public site the QR deep links point to.
	BaseURL string
}

// Server serves the public map, the admin pages, the JSON API and the
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	deps       Deps
	pages      *pages
}

// NewServer creates the HTTP server and its routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		deps:   deps,
		pages:  parsePages(),
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.handleIndex)
	r.Post("/report", s.handleReportForm)
	r.Get("/admin", s.handleAdmin)
	r.Get("/qr/{id}", s.handleQR)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/points", s.handleListPoints)
		r.Get("/points/{id}", s.handleGetPoint)
		r.Get("/issue-types", s.handleIssueTypes)
		r.Get("/reports", s.handleListReports)
		r.Post("/reports", s.handleCreateReport)
		r.Get("/admin/points", s.handleAdminPoints)
	})

	return s
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

// locate resolves the ?id= selection against snap. A miss is logged and
// never surfaced to the user.
func (s *Server) locate(snap catalog.Snapshot, id string) (domain.Feature, bool) {
	f, ok := domain.Locate(snap.Features, id)
	if !ok {
		s.deps.Metrics.SelectionLookups.WithLabelValues("miss").Inc()
		s.logger.Warn("selected point not found", "id", id, "features", len(snap.Features))
		return f, false
	}
	s.deps.Metrics.SelectionLookups.WithLabelValues("hit").Inc()
	return f, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
