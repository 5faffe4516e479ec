//go:build !integration && !e2e
// +build !integration,!e2e

package capture

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/webhook-relay-go/internal/models"
)

func TestNormalizeRawHeaders(t *testing.T) {
	tests := []struct {
		name     string
		raw      []string
		expected models.Headers
	}{
		{
			name:     "empty input",
			raw:      nil,
			expected: models.Headers{},
		},
		{
			name:     "single header",
			raw:      []string{"Content-Type", "application/json"},
			expected: models.Headers{"Content-Type": "application/json"},
		},
		{
			name: "distinct headers",
			raw:  []string{"Host", "example.com", "Accept", "*/*"},
			expected: models.Headers{
				"Host":   "example.com",
				"Accept": "*/*",
			},
		},
		{
			name:     "repeated header folds to ordered list",
			raw:      []string{"X-Trace", "a", "X-Trace", "b"},
			expected: models.Headers{"X-Trace": []string{"a", "b"}},
		},
		{
			name:     "triple repeat keeps transmission order",
			raw:      []string{"X-Trace", "a", "X-Trace", "b", "X-Trace", "c"},
			expected: models.Headers{"X-Trace": []string{"a", "b", "c"}},
		},
		{
			name:     "trailing name without value is ignored",
			raw:      []string{"Host", "example.com", "Orphan"},
			expected: models.Headers{"Host": "example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRawHeaders(tt.raw))
		})
	}
}

func TestRawHeaderSequence_RoundTrip(t *testing.T) {
	h := http.Header{}
	h.Add("X-Trace", "a")
	h.Add("X-Trace", "b")
	h.Add("Accept", "text/html")

	headers := NormalizeRawHeaders(RawHeaderSequence(h))

	assert.Equal(t, []string{"a", "b"}, headers["X-Trace"])
	assert.Equal(t, "text/html", headers["Accept"])
}
