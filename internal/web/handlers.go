package web

import (
	"context"
	"net/http"
	"time"

	"github.com/mulearn/dashboard/internal/core"
)

// healthStatus is the body of /healthz.
type healthStatus struct {
	Status  string                   `json:"status"`
	Store   string                   `json:"store"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

// handleHealth reports store connectivity and import slot usage. It answers
// 503 when the store is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Store: "ok", Imports: s.service.Limiter().Status()}
	code := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Store = err.Error()
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, status)
}
