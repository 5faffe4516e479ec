// Package models defines the domain types shared by the capture pipeline,
// the registries and the HTTP layer.
package models

import (
	"encoding/base64"
	"time"
)

// Headers maps a header name to either a single string or, when the same
// name occurred more than once, an ordered []string of all occurrences.
type Headers map[string]any

// BodyKind tags the variant held by a Body.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyForm
	BodyText
	BodyBytes
	BodyMultipart
)

// FormFile describes one uploaded file inside a multipart submission.
type FormFile struct {
	OriginalName  string `json:"originalName"`
	MimeType      string `json:"mimeType"`
	SizeBytes     int    `json:"sizeBytes"`
	Base64Content string `json:"base64Content"`
}

// Body is the tagged union produced by the body decoder. Exactly one of the
// variant fields is meaningful, selected by Kind.
type Body struct {
	Kind     BodyKind
	JSON     any               // BodyJSON: decoded object/array/scalar
	Form     map[string]string // BodyForm: flat key -> value
	Text     string            // BodyText: raw text, also XML kept verbatim
	Bytes    []byte            // BodyBytes: unrecognized content types
	FormData map[string]any    // BodyMultipart: field name -> FormFile or string
}

// Value returns the JSON-facing representation of the body: the decoded
// value for JSON and form payloads, the string for text, base64 for raw
// bytes, nil when absent. Multipart bodies surface through FormData instead.
func (b Body) Value() any {
	switch b.Kind {
	case BodyJSON:
		return b.JSON
	case BodyForm:
		return b.Form
	case BodyText:
		return b.Text
	case BodyBytes:
		return base64.StdEncoding.EncodeToString(b.Bytes)
	default:
		return nil
	}
}

// CapturedRequest is the immutable record built once per inbound request.
// Field names mirror what the viewer expects on the wire.
type CapturedRequest struct {
	ID          string            `json:"id"`
	Method      string            `json:"method"`
	FullPath    string            `json:"fullPath"`
	Path        string            `json:"path"`
	Headers     Headers           `json:"headers"`
	QueryParams map[string]string `json:"queryParams"`
	Body        any               `json:"body,omitempty"`
	FormData    map[string]any    `json:"formData,omitempty"`
	Host        string            `json:"host"`
	Protocol    string            `json:"protocol"`
	Time        time.Time         `json:"time"`
}
