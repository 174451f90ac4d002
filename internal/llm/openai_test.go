package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubGenerator points a generator at a local HTTP stub.
func newStubGenerator(t *testing.T, handler http.HandlerFunc) *openAIGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &openAIGenerator{
		client: openai.NewClient(
			option.WithBaseURL(srv.URL+"/"),
			option.WithAPIKey("test"),
			option.WithMaxRetries(0),
		),
		model: DefaultModel,
	}
}

func completionBody(content string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": %q}}]
	}`, content)
}

func TestGenerate_ReturnsContent(t *testing.T) {
	g := newStubGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("Emissions fell 12% in 2023."))
	})

	answer, err := g.Generate(context.Background(), "prompt", "system")
	require.NoError(t, err)
	assert.Equal(t, "Emissions fell 12% in 2023.", answer)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	g := newStubGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`)
	})

	_, err := g.Generate(context.Background(), "prompt", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerate_ClientErrorNotRetried(t *testing.T) {
	var calls int
	g := newStubGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "bad request", "type": "invalid_request_error"}}`)
	})

	_, err := g.Generate(context.Background(), "prompt", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 1, calls)
}

func TestGenerateStructured_ParsesJSON(t *testing.T) {
	g := newStubGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody(`{"years": [2021, 2022], "query": "emissions trend"}`))
	})

	var out struct {
		Years []int  `json:"years"`
		Query string `json:"query"`
	}
	err := g.GenerateStructured(context.Background(), "prompt", "system", &out)
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022}, out.Years)
	assert.Equal(t, "emissions trend", out.Query)
}

func TestGenerateStructured_MalformedJSON(t *testing.T) {
	g := newStubGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody("the years are 2021 and 2022"))
	})

	var out struct {
		Years []int `json:"years"`
	}
	err := g.GenerateStructured(context.Background(), "prompt", "", &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructuredOutput)
}
