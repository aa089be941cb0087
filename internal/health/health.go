// Package health provides the liveness endpoint.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doanvh/studentsvc/internal/observability"
)

// DefaultProbeTimeout bounds how long a single health check may run.
const DefaultProbeTimeout = 5 * time.Second

// Check is a named health check.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function into a Check.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) error
}

// NewCheckFunc creates a named check from a function.
func NewCheckFunc(name string, fn func(ctx context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the check name.
func (c *CheckFunc) Name() string { return c.name }

// Check runs the check.
func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// Handler serves the health endpoint, running all registered checks.
type Handler struct {
	mu        sync.RWMutex
	checks    []Check
	logger    observability.Logger
	startTime time.Time
}

// NewHandler creates a health handler.
func NewHandler(logger observability.Logger) *Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Handler{
		logger:    logger,
		startTime: time.Now(),
	}
}

// Register adds a check.
func (h *Handler) Register(c Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, c)
}

// Handle serves GET /health. Returns 200 when every check passes and
// 503 otherwise, with per-check results in the body.
func (h *Handler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultProbeTimeout)
	defer cancel()

	h.mu.RLock()
	checks := make([]Check, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	results := make(map[string]string, len(checks))
	healthy := true
	for _, check := range checks {
		if err := check.Check(ctx); err != nil {
			h.logger.Warn("health check failed",
				observability.String("check", check.Name()),
				observability.Error(err),
			)
			results[check.Name()] = err.Error()
			healthy = false
			continue
		}
		results[check.Name()] = "ok"
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":         overall,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"checks":         results,
	})
}
