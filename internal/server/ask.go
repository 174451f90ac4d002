package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ymori/esgrag/internal/llm"
	"github.com/ymori/esgrag/internal/rag"
	"github.com/ymori/esgrag/internal/storage"
)

// Asker is the service surface the handler depends on.
type Asker interface {
	Ask(ctx context.Context, question string) (*rag.Response, error)
}

// AskHandler serves POST /api/v1/ask.
type AskHandler struct {
	service Asker
	logger  *slog.Logger
}

// NewAskHandler creates the handler.
func NewAskHandler(service Asker, logger *slog.Logger) *AskHandler {
	return &AskHandler{service: service, logger: logger}
}

// AskRequest is the HTTP request payload.
type AskRequest struct {
	Question string `json:"question"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	// Validation happens before any provider call so a bad request never
	// costs an LLM round trip.
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question must not be empty"})
		return
	}

	resp, err := h.service.Ask(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("ask failed", "error", err)
		writeJSON(w, statusFor(err), errorResponse{Error: publicMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps pipeline failures to HTTP statuses: a broken index is a
// dependency outage, a broken model is a bad upstream response.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrVectorStore), errors.Is(err, storage.ErrQdrantUnreachable):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrGeneration), errors.Is(err, llm.ErrStructuredOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrVectorStore), errors.Is(err, storage.ErrQdrantUnreachable):
		return "search index unavailable"
	case errors.Is(err, llm.ErrGeneration), errors.Is(err, llm.ErrStructuredOutput):
		return "answer generation failed"
	default:
		return "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
