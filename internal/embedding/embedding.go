// Package embedding provides the dense and sparse text-embedding providers
// used by the hybrid index.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmbedding wraps all embedding-provider failures.
var ErrEmbedding = errors.New("embedding failed")

// SparseVector is a variable-length (index, weight) pair list capturing
// lexical match. Indices and Values are index-aligned and of equal length.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// DenseEmbedder generates fixed-length semantic embeddings.
type DenseEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimension reports the provider's output dimensionality, discovered by
	// embedding a probe string on first use.
	Dimension(ctx context.Context) (int, error)
}

// SparseEmbedder generates sparse lexical embeddings.
type SparseEmbedder interface {
	Embed(ctx context.Context, text string) (SparseVector, error)
}

// NewDenseEmbedder creates a dense embedder by provider name.
func NewDenseEmbedder(provider, apiKey, model string) (DenseEmbedder, error) {
	switch provider {
	case "openai":
		return newOpenAIEmbedder(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown dense embedding provider %q", provider)
	}
}

// NewSparseEmbedder creates a sparse embedder by provider name.
func NewSparseEmbedder(provider string) (SparseEmbedder, error) {
	switch provider {
	case "bm25":
		return newBM25Encoder(), nil
	default:
		return nil, fmt.Errorf("unknown sparse embedding provider %q", provider)
	}
}
