package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ymori/esgrag/internal/llm"
)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 5

// PromptSource resolves prompt stages to their system message and template.
type PromptSource interface {
	System(stage string) (string, error)
	Template(stage string) (string, error)
}

// Graph wires the rewrite, retrieve and generate stages. Build it once and
// reuse it; Run is safe for concurrent use because each run gets its own
// State.
type Graph struct {
	rewrite  *rewriteStage
	retrieve *retrieveStage
	generate *generateStage
}

// NewGraph constructs the pipeline. Prompts for both LLM stages are resolved
// here so a misconfigured prompt file fails at startup, not mid-request.
// topK values below 1 fall back to DefaultTopK.
func NewGraph(generator llm.Generator, searcher Searcher, source PromptSource, topK int, logger *slog.Logger) (*Graph, error) {
	if topK < 1 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}

	rewrite, err := newRewriteStage(generator, source, logger)
	if err != nil {
		return nil, err
	}
	generate, err := newGenerateStage(generator, source, logger)
	if err != nil {
		return nil, err
	}

	return &Graph{
		rewrite:  rewrite,
		retrieve: &retrieveStage{searcher: searcher, topK: topK, logger: logger},
		generate: generate,
	}, nil
}

// resolvePrompt fetches a stage's system message and template.
func resolvePrompt(source PromptSource, stage string) (system, template string, err error) {
	if system, err = source.System(stage); err != nil {
		return "", "", fmt.Errorf("resolve %s prompt: %w", stage, err)
	}
	if template, err = source.Template(stage); err != nil {
		return "", "", fmt.Errorf("resolve %s prompt: %w", stage, err)
	}
	return system, template, nil
}

// fill replaces {key} placeholders in a template.
func fill(template string, values map[string]string) string {
	for key, value := range values {
		template = strings.ReplaceAll(template, "{"+key+"}", value)
	}
	return template
}

// Run executes the stages in order and returns the final state.
func (g *Graph) Run(ctx context.Context, question string) (*State, error) {
	state := &State{Question: question}

	g.rewrite.run(ctx, state)

	if err := g.retrieve.run(ctx, state); err != nil {
		return nil, err
	}
	if err := g.generate.run(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}
