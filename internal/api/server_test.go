//go:build !integration && !e2e
// +build !integration,!e2e

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/webhook-relay-go/internal/capture"
	"github.com/user/webhook-relay-go/internal/config"
	"github.com/user/webhook-relay-go/internal/relay"
	"github.com/user/webhook-relay-go/internal/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := testutil.NewTestLogger()
	return NewServer(ServerDeps{
		Overrides: relay.NewOverrideRegistry(logger),
		Channels:  relay.NewChannelRegistry(logger),
		Decoder:   capture.NewDecoder(1<<20, logger),
		Builder:   capture.NewBuilder(logger),
		WebSocket: config.WebSocketConfig{SendBufferSize: 16},
		Logger:    logger,
	})
}

func TestServer_OverrideRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	// Register an override through the HTTP surface.
	body := `{"statusCode": 418, "headers": {"X-Brew": "short"}, "body": {"tea": true}}`
	req := httptest.NewRequest("POST", "/set-response/hook1/POST/brew", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/brew", resp["path"])

	// A matching capture request replays it.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("POST", "/hook1/brew", nil))
	assert.Equal(t, 418, w.Code)
	assert.Equal(t, "short", w.Header().Get("X-Brew"))
	assert.JSONEq(t, `{"tea": true}`, w.Body.String())

	// A non-matching one gets the default acknowledgment.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/hook1/brew", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Webhook received")
}

func TestServer_CaptureAndOverrideRoutesCoexist(t *testing.T) {
	srv := newTestServer(t)

	// A sender whose session id happens to collide with nothing special.
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("PUT", "/abc123/deep/nested/path?q=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Payload struct {
			Path     string `json:"path"`
			FullPath string `json:"fullPath"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/deep/nested/path", resp.Payload.Path)
	assert.Equal(t, "/abc123/deep/nested/path", resp.Payload.FullPath)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestServer_OverridePreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/set-response/hook1/POST/brew", nil)
	req.Header.Set("Origin", "http://viewer.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_OptionsCaptureIsStillCaptured(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/hook1/cors-probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Webhook received")
}

func TestServer_InvalidOverrideRejected(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/set-response/hook1/POST/brew", strings.NewReader(`{"statusCode": 200}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Invalid custom response format"}`, w.Body.String())
}
