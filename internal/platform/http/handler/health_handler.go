// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check is a named dependency probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health returns the /healthz handler. Every check is probed with a short
// timeout; any failure turns the response into 503.
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Explicitly prevent caching
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				slog.Warn("health check failed", "check", chk.Name, "error", err)
				results[chk.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[chk.Name] = "ok"
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
