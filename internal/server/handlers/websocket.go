// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// EventSource delivers the payloads published on a subject until the
// returned unsubscribe function is called
type EventSource interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// NATSEventSource adapts a NATS connection to EventSource
type NATSEventSource struct {
	Conn *nats.Conn
}

// Subscribe implements EventSource
func (s NATSEventSource) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	sub, err := s.Conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { sub.Unsubscribe() }, nil
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is one frame sent to a stream client
type StreamMessage struct {
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Stream message types
const (
	StreamWelcome   = "welcome"
	StreamRefreshed = "trends.refreshed"
)

// streamClient represents a connected WebSocket client
type streamClient struct {
	conn   *websocket.Conn
	send   chan []byte
	config WebSocketConfig
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
	once   sync.Once
	unsub  func()
}

// TrendStreamHandler streams trend refresh events to WebSocket clients
func TrendStreamHandler(events EventSource, subject string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := hlog.FromRequest(r).With().Str("component", "trend_stream").Logger()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("failed to upgrade to websocket")
			return
		}

		client := &streamClient{
			conn:   conn,
			send:   make(chan []byte, 16),
			config: DefaultWebSocketConfig(),
			log:    log,
		}

		unsub, err := events.Subscribe(subject, func(data []byte) {
			client.enqueue(StreamRefreshed, data)
		})
		if err != nil {
			log.Error().Err(err).Str("subject", subject).Msg("failed to subscribe to trend events")
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "events unavailable"))
			conn.Close()
			return
		}
		client.unsub = unsub

		client.enqueue(StreamWelcome, nil)

		go client.writePump()
		go client.readPump()

		log.Debug().Str("subject", subject).Msg("stream client connected")
	}
}

// enqueue queues a frame, dropping it when the client is gone or too slow
func (c *streamClient) enqueue(kind string, data []byte) {
	frame, err := json.Marshal(StreamMessage{Type: kind, Time: time.Now().UTC(), Data: data})
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.log.Warn().Msg("stream client too slow, dropping event")
	}
}

// readPump discards client input and notices when the peer goes away
func (c *streamClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump pumps queued frames to the WebSocket connection
func (c *streamClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes and closes the connection exactly once
func (c *streamClient) closeConnection() {
	c.once.Do(func() {
		if c.unsub != nil {
			c.unsub()
		}

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		c.conn.Close()
		c.log.Debug().Msg("stream client disconnected")
	})
}
