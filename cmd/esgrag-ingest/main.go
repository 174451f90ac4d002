// Package main provides the ingestion CLI for report text files.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ymori/esgrag/internal/chunking"
	"github.com/ymori/esgrag/internal/config"
	"github.com/ymori/esgrag/internal/embedding"
	"github.com/ymori/esgrag/internal/ingest"
	"github.com/ymori/esgrag/internal/storage"
	"github.com/ymori/esgrag/internal/textclean"
)

var rootCmd = &cobra.Command{
	Use:   "esgrag-ingest",
	Short: "Sustainability report ingestion tool",
	Long:  "CLI tool for cleaning, chunking and indexing extracted report text into Qdrant",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index all report text files in a directory",
	Long: `Cleans, chunks and indexes every .md and .txt file under the directory.

Report years are detected from file names, then from parent directory
names. Files without a detectable year are indexed without a year and
never match year-filtered searches.

Environment variables:
  QDRANT_HOST       Qdrant hostname (default: localhost)
  QDRANT_PORT       Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION Collection name (default: sustainability_reports)
  OPENAI_API_KEY    OpenAI API key for embeddings (required)
  CHUNK_STRATEGY    recursive or markdown (default: recursive)
  CHUNK_SIZE        Chunk size in tokens (default: 1000)
  CHUNK_OVERLAP     Chunk overlap in tokens (default: 150)
  DATA_DIR          Default input directory (default: ./data)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dir := cfg.DataDir
	if len(args) > 0 {
		dir = args[0]
	}

	dense, err := embedding.NewDenseEmbedder("openai", cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("failed to create dense embedder: %w", err)
	}
	sparse, err := embedding.NewSparseEmbedder("bm25")
	if err != nil {
		return fmt.Errorf("failed to create sparse embedder: %w", err)
	}
	chunker, err := chunking.New(cfg.ChunkStrategy, cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("failed to create chunker: %w", err)
	}

	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.QdrantHost, cfg.QdrantPort)
	index, err := storage.NewHybridIndex(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection, dense, sparse)
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer index.Close()

	if err := index.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	pipeline := ingest.NewPipeline(textclean.NewCleaner(), chunker, index, logger)

	fmt.Printf("Ingesting reports from %s...\n", dir)
	result, err := pipeline.IngestDir(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Files:    %d total, %d indexed, %d failed\n",
		result.TotalFiles, result.SuccessfulFiles, len(result.FailedFiles))
	fmt.Printf("Passages: %d\n", result.TotalPassages)
	fmt.Printf("Duration: %s\n", result.Duration.Round(time.Millisecond))
	for _, failed := range result.FailedFiles {
		fmt.Printf("  failed: %s (%s)\n", failed.Path, failed.Reason)
	}

	if len(result.FailedFiles) > 0 {
		return fmt.Errorf("%d file(s) failed to ingest", len(result.FailedFiles))
	}
	return nil
}
