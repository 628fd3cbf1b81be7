// Package server exposes the counter service over HTTP.
//
// # Endpoints
//
//	POST /create               create a counter from {site, startAt, options}
//	POST /upload-bg            attach a background (multipart bgImage + counterId)
//	GET  /counter.png          increment and render (?page=<id>)
//	GET  /static-counter.png   render without incrementing
//	GET  /preview.png          render a sample badge from query overrides
//	GET  /all-counters         ids in creation order
//	POST /api/visit            increment {page}, returns {"visits": n}
//	GET  /healthz              liveness
//	GET  /metrics              Prometheus metrics
//
// Badge endpoints return SVG unless ?format=png is given or the server default
// is PNG. Mutating POST endpoints are rate limited per client address.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/kawaiicounter/pkg/service"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP server.
type Options struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	DefaultFormat  service.Format

	// RateLimitRPS of 0 disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server routes HTTP requests to a service.Service.
type Server struct {
	svc     *service.Service
	opts    Options
	logger  *log.Logger
	metrics *Metrics
	limiter *clientLimiter
	router  chi.Router
}

// New builds the router and registers Prometheus hooks for counter and render
// events. A nil logger falls back to log.Default().
func New(svc *service.Service, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = service.FormatSVG
	}

	s := &Server{
		svc:     svc,
		opts:    opts,
		logger:  logger,
		metrics: NewMetrics(),
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = newClientLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}
	s.metrics.Register()
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/all-counters", s.handleAllCounters)

	r.Group(func(r chi.Router) {
		r.Use(noCache)
		r.Get("/counter.png", s.handleBadge(true))
		r.Get("/static-counter.png", s.handleBadge(false))
		r.Get("/preview.png", s.handlePreview)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/create", s.handleCreate)
		r.Post("/upload-bg", s.handleUploadBackground)
		r.Post("/api/visit", s.handleVisit)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the server's Prometheus collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
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
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
