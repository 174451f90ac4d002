package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ymori/esgrag/internal/llm"
)

type generateStage struct {
	generator llm.Generator
	system    string
	template  string
	logger    *slog.Logger
}

func newGenerateStage(generator llm.Generator, source PromptSource, logger *slog.Logger) (*generateStage, error) {
	system, template, err := resolvePrompt(source, "generate")
	if err != nil {
		return nil, err
	}
	return &generateStage{
		generator: generator,
		system:    system,
		template:  template,
		logger:    logger,
	}, nil
}

// run produces the answer from the retrieved passages. The prompt carries
// the original question, not the rewritten one, so the model answers what
// the user actually asked. An empty context still goes to the model, whose
// instructions tell it to say the answer is not in the reports.
func (s *generateStage) run(ctx context.Context, state *State) error {
	prompt := fill(s.template, map[string]string{
		"context":  strings.Join(state.Documents, "\n\n"),
		"question": state.Question,
	})

	answer, err := s.generator.Generate(ctx, prompt, s.system)
	if err != nil {
		return err
	}

	state.Answer = strings.TrimSpace(answer)
	s.logger.Debug("answer generated", "length", len(state.Answer))
	return nil
}
