// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ymori/esgrag/internal/chunking"
	"github.com/ymori/esgrag/internal/storage"
	"github.com/ymori/esgrag/internal/workflow"
)

// Config holds all configuration for the application.
type Config struct {
	QdrantHost       string
	QdrantPort       int
	QdrantCollection string

	OpenAIAPIKey   string
	LLMModel       string
	EmbeddingModel string

	TopK         int
	ChunkStrategy string
	ChunkSize     int
	ChunkOverlap  int

	DataDir string
	Port    string
}

// Load reads configuration from environment variables, applying defaults
// for optional fields and failing fast on missing or malformed required
// ones. A .env file in the working directory is loaded first; real
// environment variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", storage.DefaultCollection),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		LLMModel:         getEnv("LLM_MODEL", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", ""),
		ChunkStrategy:    getEnv("CHUNK_STRATEGY", chunking.StrategyRecursive),
		DataDir:          getEnv("DATA_DIR", "./data"),
		Port:             getEnv("PORT", "8080"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	var err error
	if cfg.QdrantPort, err = getEnvInt("QDRANT_PORT", 6334); err != nil {
		return nil, err
	}
	if cfg.TopK, err = getEnvInt("RAG_TOP_K", workflow.DefaultTopK); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", chunking.DefaultChunkSize); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", chunking.DefaultChunkOverlap); err != nil {
		return nil, err
	}

	if cfg.TopK < 1 {
		return nil, fmt.Errorf("RAG_TOP_K must be at least 1")
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}
