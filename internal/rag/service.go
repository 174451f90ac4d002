// Package rag exposes the question-answering facade over the workflow graph.
package rag

import (
	"context"
	"log/slog"

	"github.com/ymori/esgrag/internal/llm"
	"github.com/ymori/esgrag/internal/workflow"
)

// Response is the full answer envelope, including the retrieval trace so
// callers can show how the answer was produced.
type Response struct {
	Answer            string   `json:"answer"`
	Sources           []string `json:"sources"`
	RewrittenQuestion string   `json:"rewritten_question"`
	YearsExtracted    []int    `json:"years_extracted"`
}

// Service answers questions against the indexed report corpus. The workflow
// graph is compiled once at construction and shared across calls.
type Service struct {
	graph *workflow.Graph
}

// NewService builds the service from its providers. Prompt resolution
// happens here; a missing prompt entry is a setup failure.
func NewService(generator llm.Generator, searcher workflow.Searcher, source workflow.PromptSource, topK int, logger *slog.Logger) (*Service, error) {
	graph, err := workflow.NewGraph(generator, searcher, source, topK, logger)
	if err != nil {
		return nil, err
	}
	return &Service{graph: graph}, nil
}

// Ask runs the full pipeline for one question.
func (s *Service) Ask(ctx context.Context, question string) (*Response, error) {
	state, err := s.graph.Run(ctx, question)
	if err != nil {
		return nil, err
	}

	sources := state.Documents
	if sources == nil {
		sources = []string{}
	}
	years := state.Years
	if years == nil {
		years = []int{}
	}

	return &Response{
		Answer:            state.Answer,
		Sources:           sources,
		RewrittenQuestion: state.RewrittenQuestion,
		YearsExtracted:    years,
	}, nil
}
