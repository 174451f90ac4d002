package embedding

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
)

// bm25Encoder is a deterministic hashing-based sparse encoder with BM25-style
// term-frequency saturation. Terms are lowercased word tokens hashed to
// 32-bit indices; repeated terms get higher but saturating weights. It needs
// no model download and no corpus statistics, which keeps ingestion and
// querying consistent as long as both sides use the same encoder.
type bm25Encoder struct {
	k1        float64
	b         float64
	avgDocLen float64
}

func newBM25Encoder() *bm25Encoder {
	return &bm25Encoder{
		k1:        1.2,
		b:         0.75,
		avgDocLen: 256,
	}
}

// Embed produces an index-aligned sparse vector for the text. Empty or
// token-free text yields an empty vector.
func (e *bm25Encoder) Embed(_ context.Context, text string) (SparseVector, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return SparseVector{}, nil
	}

	counts := make(map[uint32]float64, len(tokens))
	for _, tok := range tokens {
		counts[hashToken(tok)]++
	}

	docLen := float64(len(tokens))
	norm := e.k1 * (1 - e.b + e.b*docLen/e.avgDocLen)

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		tf := counts[idx]
		values[i] = float32(tf * (e.k1 + 1) / (tf + norm))
	}

	return SparseVector{Indices: indices, Values: values}, nil
}

// tokenize lowercases the text and splits it into letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hashToken(tok string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tok))
	return h.Sum32()
}
