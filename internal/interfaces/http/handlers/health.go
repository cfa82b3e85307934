package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports reachability of one dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves liveness and dependency health.
type HealthHandler struct {
	version string
	deps    map[string]Pinger
}

// NewHealthHandler constructs a HealthHandler over named dependencies.
func NewHealthHandler(version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, deps: deps}
}

// Live handles GET /healthz: process liveness only.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

// Detail handles GET /debug/health: pings every dependency. Responds 503
// when any dependency is down.
func (h *HealthHandler) Detail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = gin.H{"status": "up"}
	}
	c.JSON(status, gin.H{"status": statusWord(status), "version": h.version, "dependencies": deps})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
