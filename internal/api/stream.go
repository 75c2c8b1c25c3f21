package api

import (
	"net/http"
	"sync"

	"strength-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscriber wraps one socket with a write lock, since gorilla/websocket
// permits only a single writer per connection and two ingests may broadcast
// concurrently.
type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) send(payload models.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(payload)
}

// Hub fans newly ingested payloads out to connected dashboard sockets.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]*subscriber
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]*subscriber)}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &subscriber{conn: conn}
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast writes the payload to every subscriber, dropping sockets that
// fail mid-write.
func (h *Hub) Broadcast(payload models.Payload) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.conns))
	for _, sub := range h.conns {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.send(payload); err != nil {
			logrus.WithError(err).Debug("dropping stale live-stream subscriber")
			h.remove(sub.conn)
		}
	}
}

// LiveStream upgrades the request and keeps the socket subscribed until the
// client goes away.
func (h *APIHandler) LiveStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("live-stream upgrade failed")
		return
	}
	h.hub.add(conn)

	// Reader loop: we never expect client messages, but reading drains
	// control frames and detects disconnects.
	go func() {
		defer h.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
