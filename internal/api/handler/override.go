package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/webhook-relay-go/internal/models"
	"github.com/user/webhook-relay-go/internal/relay"
	"go.uber.org/zap"
)

// OverrideHandler manages operator-configured response definitions.
type OverrideHandler struct {
	overrides relay.OverrideStore
	logger    *zap.Logger
}

// NewOverrideHandler creates an OverrideHandler.
func NewOverrideHandler(overrides relay.OverrideStore, logger *zap.Logger) *OverrideHandler {
	return &OverrideHandler{overrides: overrides, logger: logger}
}

// Set serves POST /set-response/:session/:method/*path. All three of
// statusCode, headers and body must be present in the JSON body, even if
// empty; anything else is a 400.
func (h *OverrideHandler) Set(c *gin.Context) {
	session := c.Param("session")
	method := strings.ToUpper(c.Param("method"))

	var req models.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("unparseable override definition", zap.Error(err))
		errorResponse(c, http.StatusBadRequest, "Invalid custom response format")
		return
	}

	normalized, err := h.overrides.Register(session, c.Param("path"), method, req)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Invalid custom response format")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Custom response set successfully",
		"path":    normalized,
	})
}

// List serves GET /set-response/:session and returns the session's
// registered overrides so a reconnecting viewer can resynchronize.
func (h *OverrideHandler) List(c *gin.Context) {
	entries := h.overrides.List(c.Param("session"))
	if entries == nil {
		entries = []models.OverrideEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"overrides": entries})
}
