package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/webhook-relay-go/internal/relay"
)

// HealthHandler reports liveness plus the relay's in-memory load.
type HealthHandler struct {
	overrides relay.OverrideStore
	channels  relay.ChannelStore
	started   time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(overrides relay.OverrideStore, channels relay.ChannelStore) *HealthHandler {
	return &HealthHandler{
		overrides: overrides,
		channels:  channels,
		started:   time.Now(),
	}
}

// Health serves GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"live_sessions":  h.channels.Count(),
		"overrides":      h.overrides.Count(),
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}
