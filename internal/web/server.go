// Package web serves the dashboard over a JSON HTTP API.
//
// Routes:
//
//	GET  /api/centers              filtered records (query: search, upazila, union, risk, ...)
//	GET  /api/centers/{id}         one record with its outbound actions
//	GET  /api/options/{dimension}  cascading options under the query's selection
//	GET  /api/tabs                 upazila tab row
//	POST /api/refresh              user sync, returns the raised notice
//	PUT  /api/source               {"source": "<sheet link or id>"}
//	GET  /api/notice               current notice, 204 when none
//	GET  /api/summary.png          PNG table of the filtered records
//	GET  /health                   health monitor
//
// Query values are read per request; the API never touches the controller's
// stored selection.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"centerhub/internal/center"
	"centerhub/internal/dashboard"
	"centerhub/internal/filter"
)

// Dashboard is the controller surface the API needs.
type Dashboard interface {
	Sync(ctx context.Context) (dashboard.Snapshot, error)
	Refresh(ctx context.Context) (dashboard.Snapshot, error)
	Snapshot() dashboard.Snapshot
	OptionsFor(sel filter.Selection, d filter.Dimension) []string
	Tabs() []filter.Tab
	Find(key string) (center.Record, bool)
	UpdateSource(input string) (string, error)
	Notice() (dashboard.Notice, bool)
	SheetID() string
}

// Renderer draws the summary table.
type Renderer interface {
	RenderTable(records []center.Record, title string) ([]byte, error)
}

const (
	summaryCacheTTL     = 10 * time.Minute
	summaryCacheCleanup = 30 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

// Server is the HTTP front of the dashboard.
type Server struct {
	dash    Dashboard
	render  Renderer
	health  http.Handler
	summary *cache.Cache
	logger  *zap.Logger
	handler http.Handler
	editURL func(id string) string
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithHealth mounts h at /health.
func WithHealth(h http.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithEditURL lets /api/source report the spreadsheet's edit link.
func WithEditURL(fn func(id string) string) Option {
	return func(s *Server) { s.editURL = fn }
}

// WithAllowedOrigins restricts CORS. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// NewServer builds the router.
func NewServer(dash Dashboard, render Renderer, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		dash:    dash,
		render:  render,
		summary: cache.New(summaryCacheTTL, summaryCacheCleanup),
		logger:  logger,
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(recoveryMiddleware(logger))
	r.Use(loggingMiddleware(logger))

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	r.HandleFunc("/api/centers", s.handleCenters).Methods(http.MethodGet)
	r.HandleFunc("/api/centers/{id}", s.handleCenter).Methods(http.MethodGet)
	r.HandleFunc("/api/options/{dimension}", s.handleOptions).Methods(http.MethodGet)
	r.HandleFunc("/api/tabs", s.handleTabs).Methods(http.MethodGet)
	r.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/source", s.handleSource).Methods(http.MethodPut)
	r.HandleFunc("/api/source", s.handleSourceShow).Methods(http.MethodGet)
	r.HandleFunc("/api/notice", s.handleNotice).Methods(http.MethodGet)
	r.HandleFunc("/api/summary.png", s.handleSummary).Methods(http.MethodGet)
	if s.health != nil {
		r.Handle("/health", s.health).Methods(http.MethodGet)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin"},
		MaxAge:         86400,
	})
	s.handler = corsHandler.Handler(r)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("✓ HTTP API listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("🛑 Shutting down HTTP API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-serverErrors
	return nil
}
