package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/user/webhook-relay-go/internal/relay"
	"go.uber.org/zap"
)

const (
	// writeWait bounds a single websocket write so a stalled viewer cannot
	// hold the write pump.
	writeWait = 10 * time.Second
	// pongWait is how long a viewer may stay silent before it is considered
	// dead; pings go out at pingPeriod to keep healthy viewers talking.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxViewerMessageSize = 4096
)

var errSendBufferFull = errors.New("viewer send buffer full")

// StreamHandler upgrades viewer connections and binds them into the
// channel registry.
type StreamHandler struct {
	channels       relay.ChannelStore
	upgrader       websocket.Upgrader
	sendBufferSize int
	logger         *zap.Logger
}

// NewStreamHandler creates a StreamHandler. Buffer sizes of zero fall back
// to the gorilla defaults.
func NewStreamHandler(channels relay.ChannelStore, readBuf, writeBuf, sendBuf int, logger *zap.Logger) *StreamHandler {
	if sendBuf <= 0 {
		sendBuf = 64
	}
	return &StreamHandler{
		channels: channels,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// The viewer is a browser app on another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sendBufferSize: sendBuf,
		logger:         logger,
	}
}

// Connect serves the websocket upgrade at GET /:session. A connection
// without a session identifier is refused outright.
func (h *StreamHandler) Connect(c *gin.Context) {
	session := c.Param("session")
	if session == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("websocket upgrade failed", zap.String("session", session), zap.Error(err))
		return
	}

	ch := newViewerChannel(conn, h.sendBufferSize)
	h.channels.Attach(session, ch)

	go ch.writePump(h.logger, session)
	go func() {
		ch.readLoop()
		h.channels.Detach(session, ch)
		h.logger.Debug("viewer connection closed", zap.String("session", session))
	}()
}

// viewerChannel adapts one websocket connection to relay.Channel. Sends go
// through a buffered queue drained by a single write pump, so Publish never
// blocks on a slow viewer and messages keep their publish order.
type viewerChannel struct {
	conn      *websocket.Conn
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newViewerChannel(conn *websocket.Conn, bufferSize int) *viewerChannel {
	return &viewerChannel{
		conn: conn,
		out:  make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

// Send queues a payload for delivery. A full queue or a closed connection
// drops the payload with an error; nothing ever blocks here.
func (ch *viewerChannel) Send(payload []byte) error {
	select {
	case <-ch.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case ch.out <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

func (ch *viewerChannel) writePump(logger *zap.Logger, session string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ch.close()
	}()

	for {
		select {
		case payload := <-ch.out:
			ch.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ch.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("viewer write failed", zap.String("session", session), zap.Error(err))
				return
			}
		case <-ticker.C:
			ch.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ch.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ch.done:
			return
		}
	}
}

// readLoop drains inbound frames until the connection dies. The viewer
// sends nothing meaningful; reading only services pongs and close frames.
func (ch *viewerChannel) readLoop() {
	defer ch.close()

	ch.conn.SetReadLimit(maxViewerMessageSize)
	ch.conn.SetReadDeadline(time.Now().Add(pongWait))
	ch.conn.SetPongHandler(func(string) error {
		return ch.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := ch.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (ch *viewerChannel) close() {
	ch.closeOnce.Do(func() {
		close(ch.done)
		ch.conn.Close()
	})
}
