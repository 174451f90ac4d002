package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// openAIGenerator calls the OpenAI chat completions API with exponential
// backoff on transient failures.
type openAIGenerator struct {
	client openai.Client
	model  string
}

func newOpenAIGenerator(apiKey, model string) *openAIGenerator {
	if model == "" {
		model = DefaultModel
	}
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &openAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Generate returns the model's plain-text completion for the prompt.
func (g *openAIGenerator) Generate(ctx context.Context, prompt, system string) (string, error) {
	content, err := g.complete(ctx, prompt, system, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return content, nil
}

// GenerateStructured requests a JSON-object completion and unmarshals it
// into out. Malformed JSON is a failure, not something to repair.
func (g *openAIGenerator) GenerateStructured(ctx context.Context, prompt, system string, out any) error {
	content, err := g.complete(ctx, prompt, system, true)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStructuredOutput, err)
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: parse response: %v", ErrStructuredOutput, err)
	}
	return nil
}

func (g *openAIGenerator) complete(ctx context.Context, prompt, system string, jsonMode bool) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(g.model),
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		}
	}

	var content string
	operation := func() error {
		resp, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty completion response"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(newChatBackoff(), ctx)); err != nil {
		return "", err
	}
	return content, nil
}

// newChatBackoff mirrors the provider-call retry budget: 500ms initial,
// 2s max interval, 5s total.
func newChatBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 5 * time.Second
	return b
}

// isTransient reports whether an error is worth retrying: rate limits,
// server-side failures, or transport errors without an API status.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return true
}
