// +build integration

package storage

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymori/esgrag/internal/embedding"
)

// hashDense is a deterministic local stand-in for a dense embedding provider
// so integration tests only require a running Qdrant.
type hashDense struct{ dim int }

func (h *hashDense) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dim)
	hash := fnv.New32a()
	hash.Write([]byte(text))
	seed := hash.Sum32()
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000 - 0.5
	}
	return vec, nil
}

func (h *hashDense) Dimension(_ context.Context) (int, error) { return h.dim, nil }

// setupTestIndex creates an index against a throwaway collection.
// Skips the test if Qdrant is not running.
func setupTestIndex(t *testing.T) *HybridIndex {
	sparse, err := embedding.NewSparseEmbedder("bm25")
	require.NoError(t, err)

	idx, err := NewHybridIndex("localhost", 6334, "esgrag_test_"+t.Name(), &hashDense{dim: 64}, sparse)
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	require.NoError(t, idx.EnsureCollection(context.Background()))
	return idx
}

func TestPassageRoundTrip(t *testing.T) {
	idx := setupTestIndex(t)
	defer idx.Close()

	ctx := context.Background()
	passages := []Passage{
		{Content: "Scope 1 emissions fell 12% against the 2020 baseline.", Source: "acme-2022.pdf", FilePath: "data/acme-2022.pdf", Year: 2022, ChunkIndex: 0},
		{Content: "Water withdrawal per unit of production decreased 8%.", Source: "acme-2022.pdf", FilePath: "data/acme-2022.pdf", Year: 2022, ChunkIndex: 1},
	}

	require.NoError(t, idx.AddPassages(ctx, passages))

	results, err := idx.Search(ctx, "Scope 1 emissions fell 12% against the 2020 baseline.", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0], "Scope 1 emissions")
}

func TestAdvancedSearchYearFilter(t *testing.T) {
	idx := setupTestIndex(t)
	defer idx.Close()

	ctx := context.Background()
	passages := []Passage{
		{Content: "In 2021 renewable electricity reached 40% of consumption.", Source: "acme-2021.pdf", Year: 2021, ChunkIndex: 0},
		{Content: "In 2023 renewable electricity reached 65% of consumption.", Source: "acme-2023.pdf", Year: 2023, ChunkIndex: 0},
		{Content: "Renewable electricity methodology notes, no period stated.", Source: "notes.pdf", ChunkIndex: 0},
	}
	require.NoError(t, idx.AddPassages(ctx, passages))

	results, err := idx.AdvancedSearch(ctx, "renewable electricity share", []int{2023}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, content := range results {
		assert.Contains(t, content, "2023")
	}
}

func TestAdvancedSearchNoYearsReturnsAll(t *testing.T) {
	idx := setupTestIndex(t)
	defer idx.Close()

	ctx := context.Background()
	passages := []Passage{
		{Content: "Board oversight of climate risk expanded in 2021.", Source: "acme-2021.pdf", Year: 2021, ChunkIndex: 0},
		{Content: "Board oversight of climate risk expanded further in 2022.", Source: "acme-2022.pdf", Year: 2022, ChunkIndex: 0},
	}
	require.NoError(t, idx.AddPassages(ctx, passages))

	results, err := idx.AdvancedSearch(ctx, "board oversight of climate risk", nil, 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestAddPassagesEmpty(t *testing.T) {
	idx := setupTestIndex(t)
	defer idx.Close()

	require.NoError(t, idx.AddPassages(context.Background(), nil))
}
