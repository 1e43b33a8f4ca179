package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devmap/devmap/pkg/config"
	derrors "github.com/devmap/devmap/pkg/errors"
	"github.com/devmap/devmap/pkg/pipeline"
	"github.com/devmap/devmap/pkg/snapshot"
)

const defaultShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Runner  *pipeline.Runner
	Dataset *pipeline.Dataset

	// FullSize, Seed and MaxTicks are applied to every zoom and layout.
	FullSize []string
	Seed     int64
	MaxTicks int

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	Logger *log.Logger
}

// Server serves the API for one dataset, which may be swapped at runtime.
type Server struct {
	runner  *pipeline.Runner
	dataset atomic.Pointer[pipeline.Dataset]
	opts    Options
	logger  *log.Logger
	router  chi.Router
}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "runner is required")
	}
	if opts.Dataset == nil {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "dataset is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{runner: opts.Runner, opts: opts, logger: opts.Logger}
	s.dataset.Store(opts.Dataset)
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// SetDataset replaces the dataset served. Requests in flight finish with
// the dataset they started with.
func (s *Server) SetDataset(ds *pipeline.Dataset) {
	s.dataset.Store(ds)
	s.logger.Info("dataset replaced", "hash", ds.Hash)
}

// Dataset returns the dataset being served.
func (s *Server) Dataset() *pipeline.Dataset { return s.dataset.Load() }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/ranks", s.handleRanks)
		r.Get("/zoom/{region}", s.handleZoom)
		r.Get("/layout", s.handleLayout)
		r.Get("/trend", s.handleTrend)
		r.Get("/followers/{country}", s.handleFollowers)
		r.Get("/click/{login}", s.handleClick)
	})
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, derrors.New(derrors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving devmap API", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error     string       `json:"error"`
	Code      derrors.Code `json:"code,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

func (s *Server) writeSnapshot(w http.ResponseWriter, section any, hit bool) {
	snap, err := snapshot.New(section)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:     derrors.UserMessage(err),
		Code:      derrors.GetCode(err),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// statusFor maps error codes onto HTTP status codes.
func statusFor(err error) int {
	switch derrors.GetCode(err) {
	case derrors.ErrCodeInvalidInput, derrors.ErrCodeInvalidBounds, derrors.ErrCodeInvalidMetric,
		derrors.ErrCodeInvalidViewport, derrors.ErrCodeInvalidFormat, derrors.ErrCodeInvalidPath,
		derrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case derrors.ErrCodeNotFound, derrors.ErrCodeUnknownRegion, derrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case derrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case derrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
