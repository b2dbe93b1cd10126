// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness probe with the build version
//	GET  /v1/formats    supported input and output formats
//	POST /v1/layout     lay out the posted document and return one artifact
//	POST /v1/validate   report every problem of the posted document
//
// The document format comes from ?input= or the Content-Type header (JSON
// when neither is set). /v1/layout takes ?format= (default svg), ?mode=,
// ?cols=, ?rows=, ?overlay=, ?gridlines=, ?labels= and ?refresh=.
//
// Every response carries an X-Request-ID header; a client-supplied ID is
// kept. Errors are JSON objects with the error code:
//
//	{"error": {"code": "INVALID_DOCUMENT", "message": "..."}, "request_id": "..."}
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridui/pkg/pipeline"
)

// Defaults for New.
const (
	DefaultAddr        = ":8080"
	DefaultMaxBodySize = 1 << 20
	shutdownTimeout    = 10 * time.Second
)

// Server serves layout requests with a shared pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	addr     string
	maxBody  int64
	defaults pipeline.Options
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address used by ListenAndServe.
func WithAddr(addr string) Option { return func(s *Server) { s.addr = addr } }

// WithMaxBodySize limits request bodies to n bytes.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithDefaults sets the pipeline options that query parameters start from.
func WithDefaults(o pipeline.Options) Option { return func(s *Server) { s.defaults = o } }

// New builds a server around runner. A nil logger logs through log.Default.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		runner:  runner,
		logger:  logger.WithPrefix("server"),
		addr:    DefaultAddr,
		maxBody: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Post("/layout", s.handleLayout)
		r.Post("/validate", s.handleValidate)
	})
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)
	return r
}

// Handler returns the HTTP handler of s.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. In-flight requests get a grace
// period to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
