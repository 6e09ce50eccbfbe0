package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	store   HealthChecker
	gateway HealthChecker
	cache   HealthChecker
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
// cache is optional: rate limiting fails open, so a Redis outage is
// reported but does not make the instance unready.
func NewHealthHandler(store, gateway, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		store:   store,
		gateway: gateway,
		cache:   cache,
		now:     time.Now,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health is a liveness probe endpoint.
// It returns 200 if the server is running.
//
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC(),
	})
}

// Ready is a readiness probe endpoint.
// It returns 200 only if the store and the gateway answer.
//
// GET /api/ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if !probe(ctx, checks, "store", h.store) {
		healthy = false
	}
	if !probe(ctx, checks, "gateway", h.gateway) {
		healthy = false
	}
	probe(ctx, checks, "cache", h.cache)

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC(),
		Checks:    checks,
	})
}

// probe records the result of one dependency check and reports whether it passed.
func probe(ctx context.Context, checks map[string]string, name string, c HealthChecker) bool {
	if c == nil {
		checks[name] = "not configured"
		return true
	}
	if err := c.Ping(ctx); err != nil {
		checks[name] = "error: " + err.Error()
		return false
	}
	checks[name] = "ok"
	return true
}
