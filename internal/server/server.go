// Package server exposes a running layout session over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /version          build information
//	GET  /snapshot         current layout and its needed size
//	GET  /snapshot.dot     current layout as Graphviz DOT
//	GET  /snapshot.svg     current layout rendered by Graphviz
//	GET  /stash            stash depth and widths
//	POST /viewport         {"width":900,"height":700}
//	POST /template         {"maxPanels":3}; 0 fits the viewport
//	POST /edit             one mutation primitive, see editRequest
//	GET  /content/{tabID}  resolved tab content
//	GET  /metrics          Prometheus metrics, when a gatherer is set
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flexdock/pkg/buildinfo"
	"github.com/matzehuels/flexdock/pkg/cache"
	"github.com/matzehuels/flexdock/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	Logger *log.Logger
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	// Cache keeps rendered SVG; nil renders every request.
	Cache cache.Cache
}

// Server is the HTTP shell of a session.
type Server struct {
	sess   *session.Session
	logger *log.Logger
	cache  cache.Cache
	router chi.Router
}

// New builds the router for sess.
func New(sess *session.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	s := &Server{sess: sess, logger: opts.Logger, cache: opts.Cache}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/snapshot.dot", s.handleDOT)
	r.Get("/snapshot.svg", s.handleSVG)
	r.Get("/stash", s.handleStash)
	r.Post("/viewport", s.handleViewport)
	r.Post("/template", s.handleTemplate)
	r.Post("/edit", s.handleEdit)
	r.Get("/content/{tabID}", s.handleContent)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("server stopped")
		return nil
	}
}
