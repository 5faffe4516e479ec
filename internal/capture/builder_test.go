//go:build !integration && !e2e
// +build !integration,!e2e

package capture

import (
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/webhook-relay-go/internal/models"
	"github.com/user/webhook-relay-go/internal/testutil"
)

func newBuilder() *Builder {
	return NewBuilder(testutil.NewTestLogger())
}

func TestBuild_BasicFields(t *testing.T) {
	req := httptest.NewRequest("post", "/hook123/orders/42?limit=5&verbose=true", nil)
	req.Host = "relay.example.com"

	record := newBuilder().Build(req, "/orders/42", models.Body{Kind: models.BodyNone})

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "POST", record.Method)
	assert.Equal(t, "/hook123/orders/42", record.FullPath)
	assert.Equal(t, "/orders/42", record.Path)
	assert.Equal(t, "relay.example.com", record.Host)
	assert.Equal(t, "http", record.Protocol)
	assert.Equal(t, map[string]string{"limit": "5", "verbose": "true"}, record.QueryParams)
	assert.Nil(t, record.Body)
	assert.False(t, record.Time.IsZero())
}

func TestBuild_UniqueIDs(t *testing.T) {
	b := newBuilder()
	req := httptest.NewRequest("GET", "/s/x", nil)

	first := b.Build(req, "/x", models.Body{Kind: models.BodyNone})
	second := b.Build(req, "/x", models.Body{Kind: models.BodyNone})
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBuild_BasicAuthDecomposition(t *testing.T) {
	req := httptest.NewRequest("GET", "/s/secure", nil)
	credential := base64.StdEncoding.EncodeToString([]byte("user:pass"))
	req.Header.Set("Authorization", "Basic "+credential)

	record := newBuilder().Build(req, "/secure", models.Body{Kind: models.BodyNone})

	assert.Equal(t, "user", record.Headers["base64username"])
	assert.Equal(t, "pass", record.Headers["base64password"])
	// Original header survives untouched.
	assert.Equal(t, "Basic "+credential, record.Headers["Authorization"])
}

func TestBuild_BasicAuthPasswordWithColon(t *testing.T) {
	req := httptest.NewRequest("GET", "/s/secure", nil)
	credential := base64.StdEncoding.EncodeToString([]byte("user:pa:ss"))
	req.Header.Set("Authorization", "Basic "+credential)

	record := newBuilder().Build(req, "/secure", models.Body{Kind: models.BodyNone})

	assert.Equal(t, "user", record.Headers["base64username"])
	assert.Equal(t, "pa:ss", record.Headers["base64password"])
}

func TestBuild_MalformedBasicAuthIgnored(t *testing.T) {
	req := httptest.NewRequest("GET", "/s/secure", nil)
	req.Header.Set("Authorization", "Basic %%%not-base64%%%")

	record := newBuilder().Build(req, "/secure", models.Body{Kind: models.BodyNone})

	assert.Equal(t, "", record.Headers["base64username"])
	assert.Equal(t, "", record.Headers["base64password"])
}

func TestBuild_NonBasicAuthUntouched(t *testing.T) {
	req := httptest.NewRequest("GET", "/s/secure", nil)
	req.Header.Set("Authorization", "Bearer token123")

	record := newBuilder().Build(req, "/secure", models.Body{Kind: models.BodyNone})

	_, hasUser := record.Headers["base64username"]
	assert.False(t, hasUser)
}

func TestBuild_BodyVariants(t *testing.T) {
	b := newBuilder()
	req := httptest.NewRequest("POST", "/s/x", nil)

	t.Run("json body", func(t *testing.T) {
		record := b.Build(req, "/x", models.Body{Kind: models.BodyJSON, JSON: map[string]any{"a": 1}})
		assert.Equal(t, map[string]any{"a": 1}, record.Body)
		assert.Nil(t, record.FormData)
	})

	t.Run("raw bytes surface as base64", func(t *testing.T) {
		record := b.Build(req, "/x", models.Body{Kind: models.BodyBytes, Bytes: []byte{1, 2, 3}})
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), record.Body)
	})

	t.Run("multipart fills formData instead of body", func(t *testing.T) {
		formData := map[string]any{"note": "hi"}
		record := b.Build(req, "/x", models.Body{Kind: models.BodyMultipart, FormData: formData})
		require.Nil(t, record.Body)
		assert.Equal(t, formData, record.FormData)
	})
}
