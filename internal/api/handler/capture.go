// Package handler contains the gin handlers for the relay's three surfaces:
// the wildcard capture endpoint, the override registration API and the
// websocket live channel.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/webhook-relay-go/internal/capture"
	"github.com/user/webhook-relay-go/internal/models"
	"github.com/user/webhook-relay-go/internal/relay"
	"go.uber.org/zap"
)

// CaptureHandler drives one inbound request through decode, publish and
// override resolution, then writes the sender-facing response.
type CaptureHandler struct {
	decoder   *capture.Decoder
	builder   *capture.Builder
	overrides relay.OverrideStore
	channels  relay.ChannelStore
	logger    *zap.Logger
}

// NewCaptureHandler creates a CaptureHandler.
func NewCaptureHandler(
	decoder *capture.Decoder,
	builder *capture.Builder,
	overrides relay.OverrideStore,
	channels relay.ChannelStore,
	logger *zap.Logger,
) *CaptureHandler {
	return &CaptureHandler{
		decoder:   decoder,
		builder:   builder,
		overrides: overrides,
		channels:  channels,
		logger:    logger,
	}
}

// Handle serves ANY /:session/*path.
func (h *CaptureHandler) Handle(c *gin.Context) {
	h.capture(c, c.Param("session"), relay.NormalizePath(c.Param("path")))
}

// HandleRoot serves requests addressed to the bare session path, which
// capture under the normalized sub-path "/".
func (h *CaptureHandler) HandleRoot(c *gin.Context) {
	h.capture(c, c.Param("session"), "/")
}

func (h *CaptureHandler) capture(c *gin.Context, session, subPath string) {
	body, err := h.decoder.Decode(c.Request)
	if err != nil {
		h.logger.Debug("body decode failed",
			zap.String("session", session),
			zap.String("path", subPath),
			zap.Error(err),
		)
		status := http.StatusBadRequest
		if errors.Is(err, capture.ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		errorResponse(c, status, "Invalid request body")
		return
	}

	record := h.builder.Build(c.Request, subPath, body)

	// The viewer sees every capture, including ones answered by an override.
	h.channels.Publish(session, record)

	if override, ok := h.overrides.Lookup(session, subPath, record.Method); ok {
		h.replay(c, override)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Webhook received", "payload": record})
}

// replay writes a registered override verbatim: its status code, its
// headers, then the body in the configured format. A missing Content-Type
// header gets a default matching the body format.
func (h *CaptureHandler) replay(c *gin.Context, override *models.Override) {
	contentType := ""
	for name, value := range override.Headers {
		if strings.EqualFold(name, "Content-Type") {
			contentType = firstHeaderValue(value)
			continue
		}
		switch v := value.(type) {
		case string:
			c.Header(name, v)
		case []string:
			for _, item := range v {
				c.Writer.Header().Add(name, item)
			}
		}
	}

	if bodilessStatus(override.StatusCode) {
		if contentType != "" {
			c.Header("Content-Type", contentType)
		}
		c.Status(override.StatusCode)
		return
	}

	var payload []byte
	if override.BodyFormat == models.BodyFormatJSON {
		payload, _ = json.Marshal(override.Body)
		if contentType == "" {
			contentType = "application/json"
		}
	} else {
		if text, ok := override.Body.(string); ok {
			payload = []byte(text)
		} else {
			payload, _ = json.Marshal(override.Body)
		}
		if contentType == "" {
			contentType = "application/xml"
		}
	}

	c.Data(override.StatusCode, contentType, payload)
}

func firstHeaderValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// bodilessStatus reports whether code forbids a response body.
func bodilessStatus(code int) bool {
	return code == http.StatusNoContent || code == http.StatusNotModified ||
		(code >= 100 && code < 200)
}
