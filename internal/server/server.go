// Package server provides the HTTP API for Tonari.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/tonari/internal/config"
	"github.com/hyperjump/tonari/internal/store"
	"go.uber.org/zap"
)

// WatchService manages watched seed directories at runtime.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, seedExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the Tonari API.
type Server struct {
	registry *store.Registry
	config   *config.Config
	logger   *zap.Logger
	watch    WatchService
	server   *http.Server
}

// NewServer creates a server with the given dependencies. watch may be nil
// when no seed directories are configured.
func NewServer(registry *store.Registry, cfg *config.Config, logger *zap.Logger, watch WatchService) *Server {
	return &Server{
		registry: registry,
		config:   cfg,
		logger:   logger,
		watch:    watch,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)

	r.Post("/api/v1/collections", s.handleCreateCollection)
	r.Get("/api/v1/collections", s.handleListCollections)
	r.Delete("/api/v1/collections/{name}", s.handleDropCollection)

	r.Post("/api/v1/collections/{name}/documents", s.handleInsertDocument)
	r.Put("/api/v1/collections/{name}/documents/{id}", s.handleUpsertDocument)
	r.Get("/api/v1/collections/{name}/documents/{id}", s.handleGetDocument)
	r.Delete("/api/v1/collections/{name}/documents/{id}", s.handleDeleteDocument)

	r.Post("/api/v1/collections/{name}/search", s.handleSearch)

	r.Get("/api/v1/watch/directories", s.handleWatchDirectoriesList)
	r.Post("/api/v1/watch/directories", s.handleWatchDirectoriesAdd)
	r.Delete("/api/v1/watch/directories", s.handleWatchDirectoriesRemove)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
