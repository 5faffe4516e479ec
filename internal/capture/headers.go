// Package capture normalizes inbound HTTP traffic into the canonical
// captured-request record pushed to live viewers.
package capture

import (
	"net/http"

	"github.com/user/webhook-relay-go/internal/models"
)

// NormalizeRawHeaders folds an alternating name/value sequence into a
// Headers map. A name seen once maps to its value; a repeated name maps to
// an ordered list of every occurrence in transmission order. A trailing name
// without a value is ignored.
func NormalizeRawHeaders(raw []string) models.Headers {
	headers := make(models.Headers)
	for i := 0; i+1 < len(raw); i += 2 {
		name, value := raw[i], raw[i+1]
		switch existing := headers[name].(type) {
		case nil:
			headers[name] = value
		case string:
			headers[name] = []string{existing, value}
		case []string:
			headers[name] = append(existing, value)
		}
	}
	return headers
}

// RawHeaderSequence flattens an http.Header into the alternating name/value
// form, repeating the name once per value so duplicates survive.
func RawHeaderSequence(h http.Header) []string {
	raw := make([]string, 0, 2*len(h))
	for name, values := range h {
		for _, value := range values {
			raw = append(raw, name, value)
		}
	}
	return raw
}
