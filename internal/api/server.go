// Package api exposes interface status and configuration over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/netcfgd/netcfgd/internal/log"
)

// Server represents the API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates the API server bound to bindAddr.
func NewServer(bindAddr string, h *Handler) *Server {
	s := &Server{router: chi.NewRouter()}

	s.router.Use(Recovery)
	s.router.Use(Logger)
	s.router.Use(JSONContentType)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/interfaces", h.GetInterfaces)
		r.Get("/interfaces/{ifname}", h.GetInterface)
		r.Put("/interfaces/{ifname}", h.ConfigureInterface)
		r.Post("/interfaces/{ifname}/scan", h.ScanInterface)
		r.Get("/health", h.CheckHealth)
	})

	s.httpServer = &http.Server{
		Addr:         bindAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router returns the assembled router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server and blocks until it shuts down.
func (s *Server) Start() error {
	log.Infof("[API] Starting server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
