// Package relay holds the shared mutable state of the relay: the override
// registry and the live-channel registry. Both are injectable stores behind
// narrow interfaces so the dispatch layer never touches a map directly.
package relay

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/user/webhook-relay-go/internal/models"
	"go.uber.org/zap"
)

// ErrInvalidOverride is returned when a caller-supplied definition is
// missing any of statusCode, headers or body.
var ErrInvalidOverride = errors.New("invalid custom response format")

// OverrideStore is the registry of operator-configured responses, keyed by
// (session, path, method). Register fully replaces any prior definition at
// the same triple; Lookup is an exact string match on all three keys.
type OverrideStore interface {
	Register(session, path, method string, req models.OverrideRequest) (string, error)
	Lookup(session, path, method string) (*models.Override, bool)
	List(session string) []models.OverrideEntry
	Count() int
}

// NormalizePath guarantees a registered or looked-up path begins with a
// slash; the empty path becomes "/".
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

type sessionOverrides struct {
	mu     sync.RWMutex
	byPath map[string]map[string]*models.Override // path -> method -> override
}

// OverrideRegistry is the in-memory OverrideStore. Sessions lock
// independently, so registrations for different sessions never contend.
type OverrideRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionOverrides
	logger   *zap.Logger
}

// NewOverrideRegistry creates an empty registry.
func NewOverrideRegistry(logger *zap.Logger) *OverrideRegistry {
	return &OverrideRegistry{
		sessions: make(map[string]*sessionOverrides),
		logger:   logger,
	}
}

// Register validates the definition, normalizes the path and stores the
// override, replacing whatever was registered at that exact triple. The
// override is built before the session lock is taken, so a concurrent
// Lookup never observes a partial write.
func (r *OverrideRegistry) Register(session, path, method string, req models.OverrideRequest) (string, error) {
	if req.StatusCode == nil || req.Headers == nil || req.Body == nil {
		return "", ErrInvalidOverride
	}

	format := req.BodyFormat
	if format == "" {
		format = models.BodyFormatJSON
	}

	headers, err := normalizeOverrideHeaders(req.Headers)
	if err != nil {
		return "", err
	}

	var body any
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return "", ErrInvalidOverride
	}

	override := &models.Override{
		StatusCode: *req.StatusCode,
		Headers:    headers,
		Body:       body,
		BodyFormat: format,
	}

	normalized := NormalizePath(path)
	method = strings.ToUpper(method)

	ses := r.session(session)
	ses.mu.Lock()
	byMethod, ok := ses.byPath[normalized]
	if !ok {
		byMethod = make(map[string]*models.Override)
		ses.byPath[normalized] = byMethod
	}
	byMethod[method] = override
	ses.mu.Unlock()

	r.logger.Info("override registered",
		zap.String("session", session),
		zap.String("path", normalized),
		zap.String("method", method),
		zap.Int("status", override.StatusCode),
	)
	return normalized, nil
}

// Lookup returns the override registered at exactly (session, path, method).
func (r *OverrideRegistry) Lookup(session, path, method string) (*models.Override, bool) {
	r.mu.RLock()
	ses, ok := r.sessions[session]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	ses.mu.RLock()
	defer ses.mu.RUnlock()
	override, ok := ses.byPath[path][strings.ToUpper(method)]
	return override, ok
}

// List returns a stable projection of the session's overrides, ordered by
// path then method.
func (r *OverrideRegistry) List(session string) []models.OverrideEntry {
	r.mu.RLock()
	ses, ok := r.sessions[session]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	ses.mu.RLock()
	entries := make([]models.OverrideEntry, 0)
	for path, byMethod := range ses.byPath {
		for method, override := range byMethod {
			entries = append(entries, models.OverrideEntry{
				Method:     method,
				Path:       path,
				StatusCode: override.StatusCode,
			})
		}
	}
	ses.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].Method < entries[j].Method
	})
	return entries
}

// Count returns the number of overrides across all sessions.
func (r *OverrideRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, ses := range r.sessions {
		ses.mu.RLock()
		for _, byMethod := range ses.byPath {
			total += len(byMethod)
		}
		ses.mu.RUnlock()
	}
	return total
}

// normalizeOverrideHeaders accepts the two value shapes a captured record's
// header map carries, a single string or a list of strings. Any other value
// type in the definition is a client error.
func normalizeOverrideHeaders(raw map[string]any) (models.Headers, error) {
	headers := make(models.Headers, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case string:
			headers[name] = v
		case []string:
			headers[name] = v
		case []any:
			list := make([]string, len(v))
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, ErrInvalidOverride
				}
				list[i] = s
			}
			headers[name] = list
		default:
			return nil, ErrInvalidOverride
		}
	}
	return headers, nil
}

func (r *OverrideRegistry) session(session string) *sessionOverrides {
	r.mu.RLock()
	ses, ok := r.sessions[session]
	r.mu.RUnlock()
	if ok {
		return ses
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ses, ok = r.sessions[session]; ok {
		return ses
	}
	ses = &sessionOverrides{byPath: make(map[string]map[string]*models.Override)}
	r.sessions[session] = ses
	return ses
}
