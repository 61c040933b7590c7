package models

import "fmt"

// SearchQuery represents a k-nearest-neighbor search request against one collection.
type SearchQuery struct {
	Vector []float32 `json:"vector"`
	K      int       `json:"k,omitempty"`
}

// Validate ensures the query has a vector and a non-negative k.
func (q *SearchQuery) Validate() error {
	if len(q.Vector) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}
	if q.K < 0 {
		return fmt.Errorf("k cannot be negative")
	}
	return nil
}

// ApplyLimits fills in defaultK when k is unset and caps k at maxK.
// A maxK of 0 means no cap.
func (q *SearchQuery) ApplyLimits(defaultK, maxK int) {
	if q.K == 0 {
		q.K = defaultK
	}
	if maxK > 0 && q.K > maxK {
		q.K = maxK
	}
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Collection string           `json:"collection"`
	Results    []ScoredDocument `json:"results"`
	Total      int              `json:"total"`
	QueryTime  int64            `json:"query_time_ms"`
}
