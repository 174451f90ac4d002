package server

import (
	"context"
	"net/http"
	"time"
)

// healthTimeout bounds the dependency check so a hung backend cannot stall
// the probe.
const healthTimeout = 3 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves GET /health, reporting the index connection state.
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler creates the handler.
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

type healthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.checker.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unhealthy",
			Detail: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
