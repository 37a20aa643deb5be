package http

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// HealthHandler serves /healthz.
type HealthHandler struct {
	checks    map[string]HealthCheck
	timeout   time.Duration
	responder responder
	logger    *slog.Logger
}

func NewHealthHandler(checks map[string]HealthCheck, logger *slog.Logger) *HealthHandler {
	base := defaultLogger(logger)
	return &HealthHandler{checks: checks, timeout: 2 * time.Second, responder: newResponder(base), logger: base}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			handlerLogger(ctx, h.logger, "HealthHandler", "Healthz").WarnContext(ctx, "health check failed", "check", name, "error", err)
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	h.responder.writeJSON(ctx, w, status, resp)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
