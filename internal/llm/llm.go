// Package llm provides the chat-completion generator used by the question
// rewrite and answer generation stages.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrGeneration wraps all completion failures.
var ErrGeneration = errors.New("generation failed")

// ErrStructuredOutput wraps failures to obtain or parse a JSON completion.
var ErrStructuredOutput = errors.New("structured output failed")

// Generator produces completions from a prompt and optional system message.
type Generator interface {
	// Generate returns the model's plain-text completion.
	Generate(ctx context.Context, prompt, system string) (string, error)
	// GenerateStructured requests a JSON completion and unmarshals it into out.
	GenerateStructured(ctx context.Context, prompt, system string, out any) error
}

// NewGenerator creates a generator by provider name.
func NewGenerator(provider, apiKey, model string) (Generator, error) {
	switch provider {
	case "openai":
		return newOpenAIGenerator(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
