package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymori/esgrag/internal/llm"
	"github.com/ymori/esgrag/internal/rag"
	"github.com/ymori/esgrag/internal/storage"
)

type fakeAsker struct {
	resp *rag.Response
	err  error
}

func (f *fakeAsker) Ask(context.Context, string) (*rag.Response, error) {
	return f.resp, f.err
}

type fakeChecker struct{ err error }

func (f *fakeChecker) Health(context.Context) error { return f.err }

func newTestServer(asker Asker, checker HealthChecker) *httptest.Server {
	logger := slog.New(slog.DiscardHandler)
	router := NewRouter(NewAskHandler(asker, logger), NewHealthHandler(checker), logger)
	return httptest.NewServer(router)
}

func postAsk(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/api/v1/ask", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestAsk_OK(t *testing.T) {
	srv := newTestServer(&fakeAsker{resp: &rag.Response{
		Answer:            "Emissions fell 12%.",
		Sources:           []string{"2023: emissions fell 12%"},
		RewrittenQuestion: "emissions change 2023",
		YearsExtracted:    []int{2023},
	}}, &fakeChecker{})
	defer srv.Close()

	resp := postAsk(t, srv.URL, `{"question": "How did emissions change in 2023?"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body rag.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Emissions fell 12%.", body.Answer)
	assert.Equal(t, []int{2023}, body.YearsExtracted)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	asker := &fakeAsker{err: errors.New("must not be called")}
	srv := newTestServer(asker, &fakeChecker{})
	defer srv.Close()

	for _, body := range []string{`{"question": ""}`, `{"question": "   "}`, `{}`} {
		resp := postAsk(t, srv.URL, body)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %s", body)
	}
}

func TestAsk_InvalidJSON(t *testing.T) {
	srv := newTestServer(&fakeAsker{}, &fakeChecker{})
	defer srv.Close()

	resp := postAsk(t, srv.URL, `{"question": `)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsk_StoreErrorMapsTo503(t *testing.T) {
	srv := newTestServer(&fakeAsker{err: fmt.Errorf("%w: dense query failed", storage.ErrVectorStore)}, &fakeChecker{})
	defer srv.Close()

	resp := postAsk(t, srv.URL, `{"question": "q"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAsk_GenerationErrorMapsTo502(t *testing.T) {
	srv := newTestServer(&fakeAsker{err: fmt.Errorf("%w: overloaded", llm.ErrGeneration)}, &fakeChecker{})
	defer srv.Close()

	resp := postAsk(t, srv.URL, `{"question": "q"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAsk_UnknownErrorMapsTo500(t *testing.T) {
	srv := newTestServer(&fakeAsker{err: errors.New("boom")}, &fakeChecker{})
	defer srv.Close()

	resp := postAsk(t, srv.URL, `{"question": "q"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeAsker{}, &fakeChecker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth_Unhealthy(t *testing.T) {
	srv := newTestServer(&fakeAsker{}, &fakeChecker{err: errors.New("connection refused")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
