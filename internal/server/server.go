// Package server wires the chi router and owns the HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/salutethegenius/bahamasopendata/cmd/api/docs"
	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/internal/handlers"
	"github.com/salutethegenius/bahamasopendata/internal/middleware"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

type Server struct {
	http *http.Server
	log  *logging.Logger
}

// New builds the router and the http.Server around it.
func New(listenAddr string, ask *handlers.AskHandler, docs *handlers.DocumentsHandler) *Server {
	r := chi.NewRouter()

	r.Use(middleware.TraceID)
	r.Use(middleware.Metrics)
	r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)))

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", ask.Ask)
		r.Get("/documents", docs.List)
		r.Post("/documents", docs.Upload)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &Server{
		http: &http.Server{
			Addr:         listenAddr,
			Handler:      r,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		log: logging.New("server"),
	}
}

// Run blocks until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("server listening", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	s.http.SetKeepAlivesEnabled(false)
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("forced shutdown", "error", err)
		return
	}
	s.log.Info("server stopped gracefully")
}
