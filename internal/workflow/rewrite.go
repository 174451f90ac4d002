package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ymori/esgrag/internal/llm"
)

// rewriteOutput is the JSON shape requested from the model.
type rewriteOutput struct {
	Years []int  `json:"years"`
	Query string `json:"query"`
}

type rewriteStage struct {
	generator llm.Generator
	system    string
	template  string
	logger    *slog.Logger
}

func newRewriteStage(generator llm.Generator, source PromptSource, logger *slog.Logger) (*rewriteStage, error) {
	system, template, err := resolvePrompt(source, "rewrite")
	if err != nil {
		return nil, err
	}
	return &rewriteStage{
		generator: generator,
		system:    system,
		template:  template,
		logger:    logger,
	}, nil
}

// run rewrites the question into a search query and extracts report years.
// Any failure, including an empty rewritten query, falls back to the
// original question with no year filter. The stage never returns an error:
// a degraded retrieval beats no answer.
func (s *rewriteStage) run(ctx context.Context, state *State) {
	state.RewrittenQuestion = state.Question
	state.Years = nil

	prompt := fill(s.template, map[string]string{
		"question": state.Question,
	})

	var out rewriteOutput
	if err := s.generator.GenerateStructured(ctx, prompt, s.system, &out); err != nil {
		s.logger.Warn("question rewrite failed, using original question", "error", err)
		return
	}
	if strings.TrimSpace(out.Query) == "" {
		s.logger.Warn("question rewrite returned empty query, using original question")
		return
	}

	state.RewrittenQuestion = strings.TrimSpace(out.Query)
	state.Years = out.Years
	s.logger.Debug("question rewritten",
		"rewritten", state.RewrittenQuestion,
		"years", state.Years)
}
