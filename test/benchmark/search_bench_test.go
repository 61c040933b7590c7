package benchmark

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hyperjump/tonari/internal/store"
	"github.com/hyperjump/tonari/internal/vector"
)

const (
	benchDocs = 1000
	benchDims = 384
)

func randomVector(rng *rand.Rand, dims int) []float32 {
	v := make([]float32, dims)
	for i := range v {
		v[i] = rng.Float32()*2 - 1
	}
	return v
}

func populatedCollection(opts ...store.CollectionOption) (*store.Collection, []float32) {
	rng := rand.New(rand.NewSource(42))
	c := store.NewCollection(opts...)
	for i := 0; i < benchDocs; i++ {
		c.Upsert(fmt.Sprintf("doc-%d", i), randomVector(rng, benchDims))
	}
	return c, randomVector(rng, benchDims)
}

func BenchmarkCosine(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	x := randomVector(rng, benchDims)
	y := randomVector(rng, benchDims)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vector.Cosine(x, y)
	}
}

func BenchmarkCollectionSearch(b *testing.B) {
	c, query := populatedCollection()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Search(query, 10)
	}
}

func BenchmarkCollectionSearchSequential(b *testing.B) {
	// Threshold above the corpus size forces the single-goroutine path.
	c, query := populatedCollection(store.WithParallelThreshold(benchDocs + 1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Search(query, 10)
	}
}

func BenchmarkCollectionUpsert(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	c := store.NewCollection()
	vecs := make([][]float32, 256)
	for i := range vecs {
		vecs[i] = randomVector(rng, benchDims)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Upsert(fmt.Sprintf("doc-%d", i%256), vecs[i%256])
	}
}
