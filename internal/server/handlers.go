package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/tonari/internal/models"
	"go.uber.org/zap"
)

type collectionInput struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var input collectionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.registry.Create(input.Name)
	s.logger.Debug("collection created", zap.String("name", input.Name))
	s.respondJSON(w, http.StatusCreated, map[string]string{"name": input.Name, "status": "created"})
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"collections": s.registry.Names()})
}

func (s *Server) handleDropCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.registry.Drop(name)
	s.logger.Debug("collection dropped", zap.String("name", name))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
}

func (s *Server) handleInsertDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(input.Vector) == 0 {
		s.respondError(w, http.StatusBadRequest, "vector is required")
		return
	}
	collection, ok := s.registry.Get(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}
	id := input.ID
	if id == "" {
		id = uuid.New().String()
	}
	collection.Upsert(id, input.Vector)
	s.logger.Debug("document stored", zap.String("collection", name), zap.String("id", id))
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "stored"})
}

func (s *Server) handleUpsertDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(input.Vector) == 0 {
		s.respondError(w, http.StatusBadRequest, "vector is required")
		return
	}
	collection, ok := s.registry.Get(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}
	collection.Upsert(id, input.Vector)
	s.logger.Debug("document stored", zap.String("collection", name), zap.String("id", id))
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "stored"})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	collection, ok := s.registry.Get(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}
	vec, ok := collection.Read(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, models.Document{ID: id, Vector: vec})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id := chi.URLParam(r, "id")
	collection, ok := s.registry.Get(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}
	collection.Delete(id)
	s.logger.Debug("document deleted", zap.String("collection", name), zap.String("id", id))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	query.ApplyLimits(s.config.Search.DefaultK, s.config.Search.MaxK)

	start := time.Now()
	results, ok := s.registry.Search(name, query.Vector, query.K)
	if !ok {
		s.respondError(w, http.StatusNotFound, "collection not found")
		return
	}
	s.logger.Debug("search request",
		zap.String("collection", name),
		zap.Int("k", query.K),
		zap.Int("dimensions", len(query.Vector)),
		zap.Int("results", len(results)),
	)
	s.respondJSON(w, http.StatusOK, models.SearchResponse{
		Collection: name,
		Results:    results,
		Total:      len(results),
		QueryTime:  time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"collections": s.registry.Len(),
		"documents":   s.registry.TotalDocuments(),
		"config": map[string]interface{}{
			"default_k":          s.config.Search.DefaultK,
			"max_k":              s.config.Search.MaxK,
			"workers":            s.config.Search.Workers,
			"parallel_threshold": s.config.Search.ParallelThreshold,
			"seed_directories":   s.config.Seed.Directories,
		},
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Seed *bool  `json:"seed,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	seedExisting := true
	if req.Seed != nil {
		seedExisting = *req.Seed
	}
	if err := s.watch.AddDirectory(req.Path, seedExisting); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": req.Path, "status": "watching"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path, err := url.QueryUnescape(r.URL.Query().Get("path"))
	if err != nil || path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.watch.RemoveDirectory(path); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"path": path, "status": "removed"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
