// Package main provides the HTTP and MCP server entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ymori/esgrag/internal/config"
	"github.com/ymori/esgrag/internal/embedding"
	"github.com/ymori/esgrag/internal/llm"
	"github.com/ymori/esgrag/internal/mcpserver"
	"github.com/ymori/esgrag/internal/prompts"
	"github.com/ymori/esgrag/internal/rag"
	"github.com/ymori/esgrag/internal/server"
	"github.com/ymori/esgrag/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	dense, err := embedding.NewDenseEmbedder("openai", cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		logger.Error("failed to create dense embedder", "error", err)
		os.Exit(1)
	}
	sparse, err := embedding.NewSparseEmbedder("bm25")
	if err != nil {
		logger.Error("failed to create sparse embedder", "error", err)
		os.Exit(1)
	}
	generator, err := llm.NewGenerator("openai", cfg.OpenAIAPIKey, cfg.LLMModel)
	if err != nil {
		logger.Error("failed to create generator", "error", err)
		os.Exit(1)
	}
	registry, err := prompts.Load()
	if err != nil {
		logger.Error("failed to load prompts", "error", err)
		os.Exit(1)
	}

	index, err := storage.NewHybridIndex(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection, dense, sparse)
	if err != nil {
		logger.Error("failed to connect to qdrant", "error", err)
		os.Exit(1)
	}
	defer index.Close()

	if err := index.EnsureCollection(ctx); err != nil {
		logger.Error("failed to ensure collection", "error", err)
		os.Exit(1)
	}

	service, err := rag.NewService(generator, index, registry, cfg.TopK, logger)
	if err != nil {
		logger.Error("failed to build rag service", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(
		server.NewAskHandler(service, logger),
		server.NewHealthHandler(index),
		logger,
	)
	router.Handle("/mcp", mcpserver.NewHTTPHandler(mcpserver.NewServer(&mcpserver.Config{
		Service: service,
		Index:   index,
	})))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server listening", "addr", srv.Addr, "collection", cfg.QdrantCollection)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
