package store

import (
	"sort"
	"sync"

	"github.com/hyperjump/tonari/internal/models"
)

// Registry maps collection names to collections. It owns its collections
// exclusively and performs no computation of its own. Construct one
// explicitly and pass it by reference; there is no package-level instance.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	opts        []CollectionOption
}

// NewRegistry creates an empty registry. opts are applied to every
// collection the registry creates.
func NewRegistry(opts ...CollectionOption) *Registry {
	return &Registry{
		collections: make(map[string]*Collection),
		opts:        opts,
	}
}

// Create returns the collection named name, creating it empty if absent.
func (r *Registry) Create(name string) *Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.collections[name]; ok {
		return c
	}
	c := NewCollection(r.opts...)
	r.collections[name] = c
	return c
}

// Get returns the collection named name, or false if absent.
func (r *Registry) Get(name string) (*Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[name]
	return c, ok
}

// Drop removes the collection named name. Dropping an absent name is a no-op.
func (r *Registry) Drop(name string) {
	r.mu.Lock()
	delete(r.collections, name)
	r.mu.Unlock()
}

// Names returns the collection names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of collections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collections)
}

// TotalDocuments returns the document count summed over all collections.
func (r *Registry) TotalDocuments() int {
	r.mu.RLock()
	collections := make([]*Collection, 0, len(r.collections))
	for _, c := range r.collections {
		collections = append(collections, c)
	}
	r.mu.RUnlock()
	total := 0
	for _, c := range collections {
		total += c.Len()
	}
	return total
}

// Search forwards a query to the named collection. The second return is
// false when no collection has that name.
func (r *Registry) Search(name string, query []float32, k int) ([]models.ScoredDocument, bool) {
	c, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	return c.Search(query, k), true
}
