// Package ingest turns extracted report text files into indexed passages.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ymori/esgrag/internal/chunking"
	"github.com/ymori/esgrag/internal/storage"
	"github.com/ymori/esgrag/internal/textclean"
)

// yearPattern matches a four-digit report year in a file or directory name.
var yearPattern = regexp.MustCompile(`20\d{2}`)

// IngestResult contains statistics about an ingestion run.
type IngestResult struct {
	TotalFiles      int
	SuccessfulFiles int
	TotalPassages   int
	FailedFiles     []FailedFile
	Duration        time.Duration
}

// FailedFile represents a file that failed to ingest.
type FailedFile struct {
	Path   string
	Reason string
}

// Indexer is the storage surface the pipeline writes to.
type Indexer interface {
	AddPassages(ctx context.Context, passages []storage.Passage) error
}

// Pipeline orchestrates cleaning, chunking and indexing of report text.
type Pipeline struct {
	cleaner *textclean.Cleaner
	chunker chunking.Chunker
	index   Indexer
	logger  *slog.Logger
}

// NewPipeline creates an ingestion pipeline with the given components.
func NewPipeline(cleaner *textclean.Cleaner, chunker chunking.Chunker, index Indexer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cleaner: cleaner,
		chunker: chunker,
		index:   index,
		logger:  logger,
	}
}

// IngestDir walks the directory and ingests every .md and .txt file.
// A failing file is logged and skipped; one corrupt report must not abort
// the run.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	result.TotalFiles = len(paths)
	p.logger.Info("starting ingestion", "dir", dir, "files", len(paths))

	for _, path := range paths {
		count, err := p.IngestFile(ctx, path)
		if err != nil {
			p.logger.Warn("failed to ingest file", "path", path, "error", err)
			result.FailedFiles = append(result.FailedFiles, FailedFile{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}
		result.SuccessfulFiles++
		result.TotalPassages += count
	}

	result.Duration = time.Since(start)
	p.logger.Info("ingestion complete",
		"successful", result.SuccessfulFiles,
		"failed", len(result.FailedFiles),
		"passages", result.TotalPassages,
		"duration", result.Duration,
	)
	return result, nil
}

// IngestFile cleans, chunks and indexes a single file. Returns the number
// of passages stored.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}

	cleaned := p.cleaner.Clean(string(raw))
	if cleaned == "" {
		p.logger.Debug("file empty after cleaning", "path", path)
		return 0, nil
	}

	chunks, err := p.chunker.Chunk(cleaned)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	year := DetectYear(path)
	source := filepath.Base(path)

	passages := make([]storage.Passage, 0, len(chunks))
	for _, ch := range chunks {
		content := ch.Content
		if ch.HeaderPath != "" {
			// Header context improves retrieval of mid-section passages.
			content = ch.HeaderPath + "\n\n" + ch.Content
		}
		passages = append(passages, storage.Passage{
			Content:    content,
			Source:     source,
			FilePath:   path,
			Year:       year,
			ChunkIndex: ch.Index,
		})
	}

	if err := p.index.AddPassages(ctx, passages); err != nil {
		return 0, fmt.Errorf("index: %w", err)
	}

	p.logger.Debug("file ingested", "path", path, "year", year, "passages", len(passages))
	return len(passages), nil
}

// DetectYear extracts the report year from the file name, then from the
// parent directory name. Returns 0 when neither contains one.
func DetectYear(path string) int {
	if m := yearPattern.FindString(filepath.Base(path)); m != "" {
		year, _ := strconv.Atoi(m)
		return year
	}
	parent := filepath.Base(filepath.Dir(path))
	if m := yearPattern.FindString(parent); m != "" {
		year, _ := strconv.Atoi(m)
		return year
	}
	return 0
}
