package storage

import "errors"

var (
	// ErrVectorStore wraps all index and search failures.
	ErrVectorStore = errors.New("vector store operation failed")
	// ErrQdrantUnreachable indicates the server could not be reached within
	// the startup retry window.
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
)
