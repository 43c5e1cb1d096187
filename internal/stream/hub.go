package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/SolYield/yieldgate/internal/pkg/logger"
	"github.com/SolYield/yieldgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 15 * time.Second // Keep-alive interval
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Identity auth happens in the middleware chain, not at upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans vault events out to connected websocket clients. It
// implements the event sink consumed by the services; a slow client
// is dropped rather than allowed to stall the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan service.VaultEvent
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Publish broadcasts one event to every connected client. Never blocks.
func (h *Hub) Publish(evt service.VaultEvent) {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for c := range h.clients {
		select {
		case c.send <- evt:
		default:
			// Client is not draining; disconnect it.
			go h.remove(c)
		}
	}
}

// HandleWS upgrades the request and streams events until the client
// goes away.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err, "client_ip", c.ClientIP())
		return
	}

	cl := &client{conn: conn, send: make(chan service.VaultEvent, sendBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	logger.Info("stream client connected", "clients", n, "client_ip", c.ClientIP())

	go h.writeLoop(cl)
	h.readLoop(cl)
}

// Close disconnects all clients; used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

// readLoop discards inbound frames; it exists to notice disconnects
// and answer the protocol-level close handshake.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(evt); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
