// Package api wires the relay's handlers, middleware and routes into one
// http.Handler.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/user/webhook-relay-go/internal/api/handler"
	"github.com/user/webhook-relay-go/internal/api/middleware"
	"github.com/user/webhook-relay-go/internal/capture"
	"github.com/user/webhook-relay-go/internal/config"
	"github.com/user/webhook-relay-go/internal/relay"
	"go.uber.org/zap"
)

// Server wraps the HTTP router and its dependencies.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// ServerDeps holds all dependencies for the API server.
type ServerDeps struct {
	Overrides relay.OverrideStore
	Channels  relay.ChannelStore
	Decoder   *capture.Decoder
	Builder   *capture.Builder
	WebSocket config.WebSocketConfig
	Logger    *zap.Logger
}

// NewServer creates a new API server with all routes configured.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware.
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	// Operational API (viewer-facing, cross-origin).
	healthHandler := handler.NewHealthHandler(deps.Overrides, deps.Channels)
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.CORS())
	{
		apiGroup.GET("/health", healthHandler.Health)
	}

	// Override registration (viewer-facing, cross-origin).
	overrideHandler := handler.NewOverrideHandler(deps.Overrides, logger)
	setGroup := r.Group("/set-response")
	setGroup.Use(middleware.CORS())
	{
		setGroup.POST("/:session/:method/*path", overrideHandler.Set)
		setGroup.OPTIONS("/:session/:method/*path", preflight)
		setGroup.GET("/:session", overrideHandler.List)
		setGroup.OPTIONS("/:session", preflight)
	}

	// Capture surface: every method, any path. A bare GET /:session with an
	// upgrade header is the viewer attaching its live channel; everything
	// else is sender traffic to capture.
	captureHandler := handler.NewCaptureHandler(deps.Decoder, deps.Builder, deps.Overrides, deps.Channels, logger)
	streamHandler := handler.NewStreamHandler(
		deps.Channels,
		deps.WebSocket.ReadBufferSize,
		deps.WebSocket.WriteBufferSize,
		deps.WebSocket.SendBufferSize,
		logger,
	)
	r.GET("/:session", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			streamHandler.Connect(c)
			return
		}
		captureHandler.HandleRoot(c)
	})
	r.Any("/:session/*path", captureHandler.Handle)

	return &Server{
		router: r,
		logger: logger,
	}
}

// preflight terminates an OPTIONS request the CORS middleware let through.
func preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
