package capture

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/webhook-relay-go/internal/models"
	"go.uber.org/zap"
)

// Synthetic header entries carrying decomposed Basic-auth credentials. The
// credential leak into the viewer is deliberate: the whole point of the
// relay is letting the operator inspect exactly what a sender transmitted.
const (
	headerBasicUsername = "base64username"
	headerBasicPassword = "base64password"
)

// Builder assembles captured-request records from decoded request parts.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build produces the immutable capture record for one inbound request.
// subPath is the portion of the URL after the session segment and must
// already carry its leading slash.
func (b *Builder) Build(r *http.Request, subPath string, body models.Body) *models.CapturedRequest {
	headers := NormalizeRawHeaders(RawHeaderSequence(r.Header))
	b.decomposeBasicAuth(headers)

	query := r.URL.Query()
	queryParams := make(map[string]string, len(query))
	for key := range query {
		queryParams[key] = query.Get(key)
	}

	protocol := "http"
	if r.TLS != nil {
		protocol = "https"
	}

	record := &models.CapturedRequest{
		ID:          uuid.NewString(),
		Method:      strings.ToUpper(r.Method),
		FullPath:    r.URL.Path,
		Path:        subPath,
		Headers:     headers,
		QueryParams: queryParams,
		Host:        r.Host,
		Protocol:    protocol,
		Time:        time.Now().UTC(),
	}

	if body.Kind == models.BodyMultipart {
		record.FormData = body.FormData
	} else {
		record.Body = body.Value()
	}
	return record
}

// decomposeBasicAuth adds base64username/base64password entries next to a
// Basic Authorization header. Additive only: the original header stays. A
// credential that fails to decode yields empty entries rather than an error.
func (b *Builder) decomposeBasicAuth(headers models.Headers) {
	value, ok := headers["Authorization"]
	if !ok {
		return
	}

	auth, ok := value.(string)
	if !ok {
		if list, isList := value.([]string); isList && len(list) > 0 {
			auth = list[0]
		}
	}
	if !strings.HasPrefix(auth, "Basic ") {
		return
	}

	username, password := "", ""
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		b.logger.Debug("undecodable basic auth credential", zap.Error(err))
	} else {
		username, password, _ = strings.Cut(string(decoded), ":")
	}
	headers[headerBasicUsername] = username
	headers[headerBasicPassword] = password
}
