package models

import "encoding/json"

// Body formats an override can be replayed in. JSON is the default; XML (or
// any raw string payload) is written out verbatim.
const (
	BodyFormatJSON = "json"
	BodyFormatXML  = "xml"
)

// OverrideRequest is the caller-supplied definition as received on the wire.
// Pointer and nil-able fields let the registry distinguish an absent field
// from a present-but-empty one: all three of statusCode, headers and body
// must be present, even if empty. Header values are a single string or a
// list of strings, the same shapes a captured record carries.
type OverrideRequest struct {
	StatusCode *int            `json:"statusCode"`
	Headers    map[string]any  `json:"headers"`
	Body       json.RawMessage `json:"body"`
	BodyFormat string          `json:"bodyFormat"`
}

// Override is a validated, stored response definition. Registering at the
// same (session, path, method) triple fully replaces a prior Override.
type Override struct {
	StatusCode int     `json:"statusCode"`
	Headers    Headers `json:"headers"`
	Body       any     `json:"body"`
	BodyFormat string  `json:"bodyFormat"`
}

// OverrideEntry is the listing projection of a stored override.
type OverrideEntry struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode"`
}
