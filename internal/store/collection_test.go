package store

import (
	"fmt"
	"math"
	"testing"

	"github.com/hyperjump/tonari/internal/vector"
)

func TestCollection_UpsertRead(t *testing.T) {
	c := NewCollection()
	c.Upsert("a", []float32{1, 2, 3})

	got, ok := c.Read("a")
	if !ok {
		t.Fatal("Read(a) should find the document")
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Read(a) = %v, want [1 2 3]", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollection_UpsertReplaces(t *testing.T) {
	c := NewCollection()
	c.Upsert("a", []float32{1, 2, 3})
	c.Upsert("a", []float32{9, 9})

	got, ok := c.Read("a")
	if !ok {
		t.Fatal("Read(a) should find the document")
	}
	if len(got) != 2 || got[0] != 9 {
		t.Errorf("Read(a) = %v, want [9 9]", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollection_UpsertCopiesInput(t *testing.T) {
	c := NewCollection()
	in := []float32{1, 2, 3}
	c.Upsert("a", in)
	in[0] = 99

	got, _ := c.Read("a")
	if got[0] != 1 {
		t.Errorf("stored vector changed with caller's slice: got %v", got)
	}
}

func TestCollection_ReadAbsent(t *testing.T) {
	c := NewCollection()
	if _, ok := c.Read("missing"); ok {
		t.Error("Read of absent id should return false")
	}
}

func TestCollection_Delete(t *testing.T) {
	c := NewCollection()
	c.Upsert("a", []float32{1})
	c.Delete("a")
	if _, ok := c.Read("a"); ok {
		t.Error("Read after Delete should return false")
	}
	// Deleting an absent id is a no-op.
	c.Delete("missing")
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCollection_SearchRanking(t *testing.T) {
	c := NewCollection()
	c.Upsert("first", []float32{12, 72, 63})
	c.Upsert("second", []float32{24, 45, 36})

	query := []float32{41, 51, 31}
	results := c.Search(query, 3)
	if len(results) != 2 {
		t.Fatalf("expected 2 results when k exceeds count, got %d", len(results))
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted descending: %v", results)
	}
	wantTop := vector.Cosine(query, []float32{24, 45, 36})
	if results[0].ID != "second" {
		t.Errorf("top result = %s, want second", results[0].ID)
	}
	if math.Abs(results[0].Score-wantTop) > 1e-9 {
		t.Errorf("top score = %v, want %v", results[0].Score, wantTop)
	}
}

func TestCollection_SearchTruncatesToK(t *testing.T) {
	c := NewCollection()
	for i := 0; i < 10; i++ {
		c.Upsert(fmt.Sprintf("doc-%d", i), []float32{float32(i + 1), 1})
	}
	results := c.Search([]float32{1, 1}, 4)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Errorf("results not sorted descending at %d: %v", i, results)
		}
	}
}

func TestCollection_SearchDimensionFilter(t *testing.T) {
	c := NewCollection()
	c.Upsert("three", []float32{1, 2, 3})

	results := c.Search([]float32{1, 2}, 5)
	if len(results) != 0 {
		t.Errorf("expected empty result for mismatched dimensions, got %v", results)
	}
}

func TestCollection_SearchMixedDimensions(t *testing.T) {
	c := NewCollection()
	c.Upsert("two", []float32{1, 2})
	c.Upsert("three", []float32{1, 2, 3})

	results := c.Search([]float32{1, 1, 1}, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "three" {
		t.Errorf("result = %s, want three", results[0].ID)
	}
}

func TestCollection_SearchZeroK(t *testing.T) {
	c := NewCollection()
	c.Upsert("a", []float32{1, 2})
	results := c.Search([]float32{1, 2}, 0)
	if len(results) != 0 {
		t.Errorf("expected empty result for k=0, got %v", results)
	}
}

func TestCollection_SearchEmptyCollection(t *testing.T) {
	c := NewCollection()
	results := c.Search([]float32{1, 2}, 3)
	if len(results) != 0 {
		t.Errorf("expected empty result on empty collection, got %v", results)
	}
}

func TestCollection_SearchZeroVectorDocument(t *testing.T) {
	c := NewCollection()
	c.Upsert("zero", []float32{0, 0, 0})

	results := c.Search([]float32{41, 51, 31}, 1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Score != 0 {
		t.Errorf("zero-vector document score = %v, want 0", results[0].Score)
	}
}

func TestCollection_SearchParallelMatchesSequential(t *testing.T) {
	seq := NewCollection(WithParallelThreshold(1 << 30))
	par := NewCollection(WithWorkers(4), WithParallelThreshold(1))
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("doc-%d", i)
		vec := []float32{float32(i%17) - 8, float32(i%13) - 6, float32(i % 7)}
		seq.Upsert(id, vec)
		par.Upsert(id, vec)
	}

	query := []float32{3, -2, 5}
	seqResults := seq.Search(query, 500)
	parResults := par.Search(query, 500)
	if len(seqResults) != len(parResults) {
		t.Fatalf("result lengths differ: %d vs %d", len(seqResults), len(parResults))
	}
	seqScores := make(map[string]float64, len(seqResults))
	for _, r := range seqResults {
		seqScores[r.ID] = r.Score
	}
	for _, r := range parResults {
		if seqScores[r.ID] != r.Score {
			t.Errorf("score for %s differs: sequential %v, parallel %v", r.ID, seqScores[r.ID], r.Score)
		}
	}
	for i := 1; i < len(parResults); i++ {
		if parResults[i-1].Score < parResults[i].Score {
			t.Errorf("parallel results not sorted descending at %d", i)
		}
	}
}

func TestCollection_SearchSnapshotUnaffectedByMutation(t *testing.T) {
	c := NewCollection()
	c.Upsert("a", []float32{1, 0})
	results := c.Search([]float32{1, 0}, 1)
	c.Upsert("a", []float32{0, 1})
	if results[0].Score != 1 {
		t.Errorf("earlier result changed after mutation: %v", results)
	}
}
