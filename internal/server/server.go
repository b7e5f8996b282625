// Package server exposes lint and audit over HTTP.
//
// The API accepts raw manifest text and returns JSON. Audit reports are
// persisted in a [store.ReportStore] so clients can fetch them again by
// id.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/tkoester/pinset/pkg/audit"
	"github.com/tkoester/pinset/pkg/store"
)

// Server is the pinset API server.
type Server struct {
	addr    string
	auditor *audit.Auditor
	store   store.ReportStore
	logger  *log.Logger
}

// Config holds the server's collaborators.
type Config struct {
	Addr    string // listen address, e.g. ":8080"
	Auditor *audit.Auditor
	Store   store.ReportStore
	Logger  *log.Logger
}

// New creates an API server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		addr:    cfg.Addr,
		auditor: cfg.Auditor,
		store:   cfg.Store,
		logger:  logger,
	}
}

// Handler builds the routed HTTP handler. Exposed separately from Serve
// for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.logRequests,
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/lint", s.handleLint)
		r.Post("/audit", s.handleAudit)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// logRequests logs one line per request with the request id.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
