// Package seed loads JSON vector files into the registry and keeps file
// contents and registry contents in sync as files change or disappear.
package seed

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hyperjump/tonari/internal/models"
	"github.com/hyperjump/tonari/internal/store"
	"go.uber.org/zap"
)

// File is the on-disk shape of a seed file: one collection name and the
// documents to upsert into it. Documents without an id get a generated one.
type File struct {
	Collection string                 `json:"collection"`
	Documents  []models.DocumentInput `json:"documents"`
}

type docRef struct {
	collection string
	id         string
}

// Seeder applies seed files to a registry. It remembers which documents each
// file contributed, so re-seeding a changed file replaces its previous
// documents and removing a file removes them.
type Seeder struct {
	registry *store.Registry
	mu       sync.Mutex
	fileDocs map[string][]docRef // abs file path -> documents it contributed
	logger   *zap.Logger
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) SeederOption {
	return func(s *Seeder) { s.logger = l }
}

// NewSeeder creates a seeder that applies files to registry.
func NewSeeder(registry *store.Registry, opts ...SeederOption) *Seeder {
	s := &Seeder{
		registry: registry,
		fileDocs: make(map[string][]docRef),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeedFile loads the seed file at path into the registry and returns the
// number of documents upserted. Documents the file contributed on a previous
// load are removed first.
func (s *Seeder) SeedFile(path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", abs, err)
	}
	if f.Collection == "" {
		return 0, fmt.Errorf("seed file %s: collection name is required", abs)
	}
	for i, doc := range f.Documents {
		if len(doc.Vector) == 0 {
			return 0, fmt.Errorf("seed file %s: document %d has no vector", abs, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(abs)

	collection := s.registry.Create(f.Collection)
	refs := make([]docRef, 0, len(f.Documents))
	for _, doc := range f.Documents {
		id := doc.ID
		if id == "" {
			id = uuid.New().String()
		}
		collection.Upsert(id, doc.Vector)
		refs = append(refs, docRef{collection: f.Collection, id: id})
	}
	s.fileDocs[abs] = refs

	if s.logger != nil {
		s.logger.Debug("seed file applied",
			zap.String("path", abs),
			zap.String("collection", f.Collection),
			zap.Int("documents", len(refs)),
		)
	}
	return len(refs), nil
}

// SeedDirectory loads every seed file under root whose extension matches and
// returns the total number of documents upserted. Files that fail to parse
// are skipped with a log entry; a bad file does not abort the rest of the
// directory.
func (s *Seeder) SeedDirectory(root string, extensions []string) (int, error) {
	docs := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !matchExtension(path, extensions) {
			return nil
		}
		n, seedErr := s.SeedFile(path)
		if seedErr != nil {
			if s.logger != nil {
				s.logger.Warn("seed file skipped", zap.String("path", path), zap.Error(seedErr))
			}
			return nil
		}
		docs += n
		return nil
	})
	if err != nil {
		return docs, fmt.Errorf("walk seed directory: %w", err)
	}
	return docs, nil
}

// RemoveFile removes the documents the file at path contributed.
// Unknown paths are a no-op.
func (s *Seeder) RemoveFile(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.removeLocked(abs)
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Debug("seed file removed", zap.String("path", abs))
	}
}

func (s *Seeder) removeLocked(abs string) {
	for _, ref := range s.fileDocs[abs] {
		if c, ok := s.registry.Get(ref.collection); ok {
			c.Delete(ref.id)
		}
	}
	delete(s.fileDocs, abs)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
