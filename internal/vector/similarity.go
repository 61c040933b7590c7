// Package vector provides cosine similarity primitives for float32 vectors.
package vector

import (
	"fmt"
	"math"
)

// Dot returns the dot product of two vectors.
// Panics if the vectors have different lengths.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector: dot of unequal lengths %d and %d", len(a), len(b)))
	}
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

// Norm returns the Euclidean (L2) norm of a vector.
func Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two vectors: dot(a,b) / (|a|*|b|).
// If either vector has zero magnitude the similarity is 0, never NaN, so
// ranking comparisons stay total. The result is not clamped; rounding may
// put it marginally outside [-1, 1].
// Panics if the vectors have different lengths; callers filter by length first.
func Cosine(a, b []float32) float64 {
	dot := Dot(a, b)
	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
