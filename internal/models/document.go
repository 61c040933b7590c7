// Package models defines core data structures for collections, documents, and search results.
package models

// Document is a stored vector together with its identifier.
type Document struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

// DocumentInput is the input for inserting or replacing a document.
// ID may be empty, in which case the host assigns one.
type DocumentInput struct {
	ID     string    `json:"id,omitempty"`
	Vector []float32 `json:"vector"`
}

// ScoredDocument is a single search hit: a document ID and its cosine
// similarity to the query.
type ScoredDocument struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
