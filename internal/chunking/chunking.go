// Package chunking splits cleaned report text into bounded passages.
//
// Two strategies are available: size-based recursive splitting and
// header-aware markdown splitting that falls back to recursive splitting for
// oversized sections. Sizes are measured in token-equivalent units using a
// rough 4-characters-per-token estimate.
package chunking

import (
	"fmt"
	"unicode/utf8"
)

const (
	// StrategyRecursive selects size-based recursive splitting.
	StrategyRecursive = "recursive"
	// StrategyMarkdown selects header-aware splitting with recursive fallback.
	StrategyMarkdown = "markdown"

	// DefaultChunkSize is the target chunk size in token-equivalent units.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the overlap between adjacent chunks.
	DefaultChunkOverlap = 150

	// charsPerToken is the rough character-to-token estimate used to bound
	// chunk sizes without a tokenizer dependency.
	charsPerToken = 4
)

// Chunk is one passage of source text.
type Chunk struct {
	Index      int
	HeaderPath string // section hierarchy, markdown strategy only
	Content    string
}

// Chunker splits a document into ordered chunks.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}

// New creates a chunker for the named strategy. Size and overlap default to
// DefaultChunkSize/DefaultChunkOverlap when zero. An unknown strategy name is
// a configuration error.
func New(strategy string, chunkSize, chunkOverlap int) (Chunker, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", chunkOverlap, chunkSize)
	}

	switch strategy {
	case StrategyRecursive:
		return newRecursiveChunker(chunkSize, chunkOverlap), nil
	case StrategyMarkdown:
		return newMarkdownChunker(chunkSize, chunkOverlap), nil
	default:
		return nil, fmt.Errorf("unknown chunking strategy %q (available: %s, %s)",
			strategy, StrategyRecursive, StrategyMarkdown)
	}
}

// tokenLen estimates the token length of s.
func tokenLen(s string) int {
	return (utf8.RuneCountInString(s) + charsPerToken - 1) / charsPerToken
}
