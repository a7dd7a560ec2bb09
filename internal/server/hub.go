package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voicedecoder/internal/logging"
)

// Event types pushed to WebSocket subscribers.
const (
	EventQueued   = "queued"
	EventStarted  = "started"
	EventProgress = "progress"
	EventResult   = "result"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 64
)

// Event is a single WebSocket message.
type Event struct {
	Type  string         `json:"type"`
	RunID string         `json:"run_id,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan Event
	hub  *Hub
	once sync.Once
}

// Hub fans events out to connected WebSocket clients.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewHub creates a hub. Call Run to start dispatching.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The service binds to loopback by default and is token-gated
			// otherwise.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logging.NewComponentLogger(logger, "websocket"),
	}
}

// Run dispatches events until ctx is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			c.close()
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered", logging.Int("client_count", count))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client unregistered", logging.Int("client_count", count))

		case evt := <-h.broadcast:
			var slow []*client
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- evt:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()

			if len(slow) > 0 {
				h.mu.Lock()
				for _, c := range slow {
					if _, ok := h.clients[c]; ok {
						delete(h.clients, c)
						c.close()
					}
				}
				h.mu.Unlock()
				h.logger.Warn("dropped slow websocket clients", logging.Int("count", len(slow)))
			}
		}
	}
}

// Broadcast queues evt for every connected client. It never blocks once the
// hub has stopped.
func (h *Hub) Broadcast(evt Event) {
	select {
	case h.broadcast <- evt:
	case <-h.done:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection upgrades the request and registers the client.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			logging.Error(err),
			logging.String("remote_addr", r.RemoteAddr))
		return
	}

	c := &client{conn: conn, send: make(chan Event, clientSendSize), hub: h}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// readPump discards client messages; it exists to process control frames and
// notice disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error", logging.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				c.hub.logger.Error("failed to marshal event", logging.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
