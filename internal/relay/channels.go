package relay

import (
	"encoding/json"
	"sync"

	"github.com/user/webhook-relay-go/internal/models"
	"go.uber.org/zap"
)

// Channel is one live viewer connection able to receive serialized capture
// records. Send must not block indefinitely; a channel that cannot accept a
// payload reports an error and the payload is dropped.
type Channel interface {
	Send(payload []byte) error
}

// ChannelStore binds a session to at most one live channel and pushes
// captures to it, fire-and-forget.
type ChannelStore interface {
	Attach(session string, ch Channel)
	Detach(session string, ch Channel)
	Publish(session string, record *models.CapturedRequest)
	Count() int
}

// ChannelRegistry is the in-memory ChannelStore.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]Channel
	logger   *zap.Logger
}

// NewChannelRegistry creates an empty registry.
func NewChannelRegistry(logger *zap.Logger) *ChannelRegistry {
	return &ChannelRegistry{
		channels: make(map[string]Channel),
		logger:   logger,
	}
}

// Attach binds ch as the session's current live target, replacing any
// previous binding. The replaced channel is not closed here; its own
// disconnect path cleans it up.
func (r *ChannelRegistry) Attach(session string, ch Channel) {
	r.mu.Lock()
	r.channels[session] = ch
	r.mu.Unlock()
	r.logger.Info("viewer attached", zap.String("session", session))
}

// Detach removes the binding only if it still points at ch, so a stale
// disconnect never clobbers a newer connection that already took over the
// session.
func (r *ChannelRegistry) Detach(session string, ch Channel) {
	r.mu.Lock()
	if r.channels[session] == ch {
		delete(r.channels, session)
		r.logger.Info("viewer detached", zap.String("session", session))
	}
	r.mu.Unlock()
}

// Publish serializes the record and sends it to the session's channel, if
// any. Delivery is best effort: no channel, a full send buffer or a write
// failure all silently drop the record for live viewing. Nothing is queued
// or retried, and the sender's request is never affected.
func (r *ChannelRegistry) Publish(session string, record *models.CapturedRequest) {
	r.mu.RLock()
	ch, ok := r.channels[session]
	r.mu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		r.logger.Error("marshal capture record", zap.Error(err), zap.String("session", session))
		return
	}
	if err := ch.Send(payload); err != nil {
		r.logger.Warn("dropped capture for live viewing",
			zap.String("session", session),
			zap.String("capture_id", record.ID),
			zap.Error(err),
		)
	}
}

// Count returns the number of sessions with a live viewer.
func (r *ChannelRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
