// Package server exposes the snap engine as a JSON HTTP API.
//
// Routes:
//
//	GET  /healthz                liveness and build version
//	GET  /api/catalog            all templates
//	GET  /api/catalog/{slug}     one template
//	POST /api/compatible         compatibility verdict for two snap points
//	POST /api/solve              solved placement for a target snap point
//	POST /api/constrain          boundary-constrained placement
//
// The API is stateless. Components are passed inline or by template slug in
// every request. Expected interaction failures (an incompatible pair, an
// unknown template) answer 200 with {"status":"rejected"}; malformed requests
// answer 400.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lightrig/rigsnap/pkg/assembly"
	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/catalog"
	"github.com/lightrig/rigsnap/pkg/fixture"
)

// Config configures a Server.
type Config struct {
	Addr    string
	Room    fixture.Room // default room for /api/constrain
	Catalog *catalog.Catalog
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger

	// RequestTimeout bounds each request. Zero means 30s.
	RequestTimeout time.Duration
}

// Server serves the JSON API.
type Server struct {
	cfg    Config
	solver *assembly.Solver
	router chi.Router
	logger *log.Logger
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		solver: assembly.NewSolver(cfg.Cache, cfg.Keyer, 0, cfg.Logger),
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/catalog/{slug}", s.handleTemplate)
		r.Post("/compatible", s.handleCompatible)
		r.Post("/solve", s.handleSolve)
		r.Post("/constrain", s.handleConstrain)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()),
		)
	})
}
