// Package websocket pushes service events (price ticks, finished proof jobs)
// to subscribed clients.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// clients that cannot keep up get dropped rather than backing up the hub
	sendBuffer = 32
)

// Event is the wire envelope for every push.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// Hub fans events out to connected clients.
type Hub struct {
	logger log.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	stopCh chan struct{}
	doneCh chan struct{}

	startMu sync.Mutex
	started bool

	upgrader websocket.Upgrader
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub builds a hub; call Start before serving connections.
func NewHub(logger log.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the API is same-origin agnostic; auth, if any, happens upstream
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start launches the hub loop. Idempotent.
func (h *Hub) Start() {
	h.startMu.Lock()
	defer h.startMu.Unlock()
	if h.started {
		return
	}
	go h.run()
	h.started = true
}

// Stop closes every client connection and ends the loop.
func (h *Hub) Stop() {
	h.startMu.Lock()
	defer h.startMu.Unlock()
	if !h.started {
		return
	}
	close(h.stopCh)
	<-h.doneCh
	h.started = false
}

func (h *Hub) run() {
	defer close(h.doneCh)
	clients := make(map[*client]struct{})
	for {
		select {
		case <-h.stopCh:
			for c := range clients {
				close(c.send)
			}
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.logger.Debugf("websocket client connected, total=%d", len(clients))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.logger.Debugf("websocket client disconnected, total=%d", len(clients))
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					delete(clients, c)
					close(c.send)
					h.logger.Warnf("websocket client dropped: send buffer full")
				}
			}
		}
	}
}

// Broadcast pushes an event to every connected client. Non-blocking: if the
// hub's queue is full the event is dropped, pushes are best-effort.
func (h *Hub) Broadcast(eventType string, data any) {
	raw, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		h.logger.Errorf("websocket event encode failed: %v", err)
		return
	}
	select {
	case h.broadcast <- raw:
	default:
		h.logger.Warnf("websocket broadcast queue full, dropping %s event", eventType)
	}
}

// ServeHTTP upgrades the request and attaches the client to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.stopCh:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames; the stream is push-only. It exists to
// process control frames and to notice closed connections.
func (c *client) readPump() {
	defer func() {
		// after Stop the run loop is gone; don't wait for a receiver that
		// will never come
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopCh:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
