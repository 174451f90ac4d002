package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultDenseModel is the OpenAI model used for dense embeddings.
const DefaultDenseModel = "text-embedding-3-small"

// dimensionProbe is the fixed string embedded once to discover the model's
// output dimensionality.
const dimensionProbe = "dimension probe"

// openAIEmbedder generates dense embeddings via the OpenAI API with
// exponential backoff on transient failures.
type openAIEmbedder struct {
	client openai.Client
	model  string

	mu  sync.Mutex
	dim int
}

func newOpenAIEmbedder(apiKey, model string) *openAIEmbedder {
	if model == "" {
		model = DefaultDenseModel
	}
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &openAIEmbedder{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Embed generates a dense embedding for the text. Rate limits, server errors
// and transport failures are retried with exponential backoff inside a short
// bounded window; other errors fail immediately.
func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32

	operation := func() error {
		resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: []string{text},
			},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Data) == 0 {
			return backoff.Permanent(fmt.Errorf("empty embedding response"))
		}
		out = toFloat32(resp.Data[0].Embedding)
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(newEmbedBackoff(), ctx)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	return out, nil
}

// Dimension embeds the probe string on first call and caches the result.
func (e *openAIEmbedder) Dimension(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dim > 0 {
		return e.dim, nil
	}

	vec, err := e.Embed(ctx, dimensionProbe)
	if err != nil {
		return 0, err
	}
	e.dim = len(vec)
	return e.dim, nil
}

// newEmbedBackoff mirrors the retry budget used for all provider calls:
// 500ms initial, 2s max interval, 5s total.
func newEmbedBackoff() *backoff.ExponentialBackOff {
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
	// No API response at all: connection or timeout problem.
	return true
}

func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
