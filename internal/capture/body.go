package capture

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/user/webhook-relay-go/internal/models"
	"go.uber.org/zap"
)

// Errors the decoder surfaces as client input errors.
var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrBodyTooLarge  = errors.New("request body too large")
)

// Decoder interprets request payloads according to their declared
// content type. Unrecognized types are kept as raw bytes, never rejected.
type Decoder struct {
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewDecoder creates a Decoder that reads at most maxBodyBytes of payload
// into memory per request.
func NewDecoder(maxBodyBytes int64, logger *zap.Logger) *Decoder {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}
	return &Decoder{maxBodyBytes: maxBodyBytes, logger: logger}
}

// Decode consumes the request body and returns its typed representation.
// Content types are checked in priority order: JSON, url-encoded form,
// multipart, XML, plain text, then raw bytes as the fallback. A JSON parse
// failure is a client error, not a silent fallback.
func (d *Decoder) Decode(r *http.Request) (models.Body, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	if isMultipart(mediaType) {
		return d.decodeMultipart(r, params["boundary"])
	}

	payload, err := d.readAll(r.Body)
	if err != nil {
		return models.Body{}, err
	}
	if len(payload) == 0 {
		return models.Body{Kind: models.BodyNone}, nil
	}

	switch {
	case isJSON(mediaType):
		var value any
		if err := json.Unmarshal(payload, &value); err != nil {
			return models.Body{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		return models.Body{Kind: models.BodyJSON, JSON: value}, nil

	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(payload))
		if err != nil {
			return models.Body{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		form := make(map[string]string, len(values))
		for key := range values {
			form[key] = values.Get(key)
		}
		return models.Body{Kind: models.BodyForm, Form: form}, nil

	case isXML(mediaType):
		// XML is kept verbatim as text, never parsed.
		return models.Body{Kind: models.BodyText, Text: string(payload)}, nil

	case strings.HasPrefix(mediaType, "text/"):
		return models.Body{Kind: models.BodyText, Text: string(payload)}, nil

	default:
		return models.Body{Kind: models.BodyBytes, Bytes: payload}, nil
	}
}

func (d *Decoder) decodeMultipart(r *http.Request, boundary string) (models.Body, error) {
	if boundary == "" {
		return models.Body{}, fmt.Errorf("%w: multipart without boundary", ErrMalformedBody)
	}

	reader := multipart.NewReader(http.MaxBytesReader(nil, r.Body, d.maxBodyBytes), boundary)
	fields := make(map[string]string)
	files := make(map[string]models.FormFile)

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Body{}, multipartReadError(err)
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return models.Body{}, multipartReadError(err)
		}

		if part.FileName() != "" {
			files[part.FormName()] = models.FormFile{
				OriginalName:  part.FileName(),
				MimeType:      part.Header.Get("Content-Type"),
				SizeBytes:     len(data),
				Base64Content: base64.StdEncoding.EncodeToString(data),
			}
		} else {
			fields[part.FormName()] = string(data)
		}
	}

	// Files override same-named plain fields.
	formData := make(map[string]any, len(fields)+len(files))
	for name, value := range fields {
		formData[name] = value
	}
	for name, file := range files {
		formData[name] = file
	}
	return models.Body{Kind: models.BodyMultipart, FormData: formData}, nil
}

// multipartReadError distinguishes the size cap tripping from a genuinely
// malformed payload, so over-limit multipart gets the same error as every
// other over-limit body.
func multipartReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrBodyTooLarge
	}
	return fmt.Errorf("%w: %v", ErrMalformedBody, err)
}

func (d *Decoder) readAll(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := io.ReadAll(io.LimitReader(body, d.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(payload)) > d.maxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return payload, nil
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isXML(mediaType string) bool {
	return mediaType == "application/xml" || mediaType == "text/xml" || strings.HasSuffix(mediaType, "+xml")
}

func isMultipart(mediaType string) bool {
	return strings.HasPrefix(mediaType, "multipart/")
}
