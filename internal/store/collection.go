// Package store implements in-memory vector collections and the name-to-collection registry.
package store

import (
	"runtime"
	"sort"
	"sync"

	"github.com/hyperjump/tonari/internal/models"
	"github.com/hyperjump/tonari/internal/vector"
)

// defaultParallelThreshold is the candidate count at which Search switches
// from sequential scoring to partitioned scoring across workers. Below it,
// goroutine overhead dominates the scoring work.
const defaultParallelThreshold = 256

// Collection owns a set of documents (identifier to vector) and answers
// cosine-similarity queries against them. Reads and writes may run
// concurrently from multiple goroutines.
//
// Vectors of different lengths may coexist in one collection; Search
// excludes entries whose length differs from the query's.
type Collection struct {
	mu                sync.RWMutex
	docs              map[string][]float32
	workers           int
	parallelThreshold int
}

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithWorkers sets the number of scoring workers used by Search.
// Values below 1 keep the default (GOMAXPROCS).
func WithWorkers(n int) CollectionOption {
	return func(c *Collection) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithParallelThreshold sets the candidate count at which Search scores in
// parallel. Values below 1 keep the default.
func WithParallelThreshold(n int) CollectionOption {
	return func(c *Collection) {
		if n >= 1 {
			c.parallelThreshold = n
		}
	}
}

// NewCollection creates an empty collection.
func NewCollection(opts ...CollectionOption) *Collection {
	c := &Collection{
		docs:              make(map[string][]float32),
		workers:           runtime.GOMAXPROCS(0),
		parallelThreshold: defaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upsert inserts vec under id, replacing any existing entry. The vector is
// copied; the caller keeps ownership of its slice.
func (c *Collection) Upsert(id string, vec []float32) {
	stored := make([]float32, len(vec))
	copy(stored, vec)
	c.mu.Lock()
	c.docs[id] = stored
	c.mu.Unlock()
}

// Read returns a copy of the vector stored under id, or false if absent.
func (c *Collection) Read(id string) ([]float32, bool) {
	c.mu.RLock()
	stored, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	out := make([]float32, len(stored))
	copy(out, stored)
	return out, true
}

// Delete removes the entry for id. Deleting an absent id is a no-op.
func (c *Collection) Delete(id string) {
	c.mu.Lock()
	delete(c.docs, id)
	c.mu.Unlock()
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

type candidate struct {
	id  string
	vec []float32
}

// Search returns up to k documents ranked by descending cosine similarity to
// query. Documents whose vector length differs from the query's are silently
// excluded. The relative order of equal scores is unspecified. A k of 0, an
// empty collection, or no eligible documents all yield an empty result.
//
// Results reflect a snapshot of the collection at the time the scan begins;
// stored slices are never mutated in place, so scoring runs outside the lock.
func (c *Collection) Search(query []float32, k int) []models.ScoredDocument {
	if k <= 0 {
		return []models.ScoredDocument{}
	}

	c.mu.RLock()
	candidates := make([]candidate, 0, len(c.docs))
	for id, vec := range c.docs {
		if len(vec) != len(query) {
			continue
		}
		candidates = append(candidates, candidate{id: id, vec: vec})
	}
	c.mu.RUnlock()

	scored := c.score(query, candidates)
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// score computes similarities for all candidates, partitioning the candidate
// set across workers when it is large enough to pay for the goroutines.
// Each comparison is computed sequentially within its worker.
func (c *Collection) score(query []float32, candidates []candidate) []models.ScoredDocument {
	scored := make([]models.ScoredDocument, len(candidates))
	if len(candidates) < c.parallelThreshold || c.workers < 2 {
		for i, cand := range candidates {
			scored[i] = models.ScoredDocument{ID: cand.id, Score: vector.Cosine(query, cand.vec)}
		}
		return scored
	}

	chunk := (len(candidates) + c.workers - 1) / c.workers
	var wg sync.WaitGroup
	for start := 0; start < len(candidates); start += chunk {
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				scored[i] = models.ScoredDocument{ID: candidates[i].id, Score: vector.Cosine(query, candidates[i].vec)}
			}
		}(start, end)
	}
	wg.Wait()
	return scored
}
