// Package realtime pushes per-user state events to websocket subscribers.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourname/nutritracker/internal"
)

const (
	pingInterval = 25 * time.Second
	writeTimeout = 10 * time.Second
)

type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

type Client struct {
	UserID string
	conn   *websocket.Conn

	writeMu sync.Mutex
	close   sync.Once
}

func (c *Client) write(messageType int, msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(messageType, msg)
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  internal.Logger
	now     func() time.Time

	upgrader websocket.Upgrader
}

func NewHub(logger internal.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
		now:     time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

// Unregister drops c and closes its connection. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	c.close.Do(func() { _ = c.conn.Close() })
}

// Subscribers reports how many connections userID has open.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish sends an event to every connection of userID. Write failures are
// ignored here; the connection's read loop unregisters it.
func (h *Hub) Publish(userID, eventType string, data any) {
	msg, err := json.Marshal(Event{Type: eventType, At: h.now().UTC(), Data: data})
	if err != nil {
		h.logger.Errorf("realtime: encode %s: %v", eventType, err)
		return
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.logger.Debugf("realtime: write to %s: %v", userID, err)
		}
	}
}

// ServeWS upgrades the request and blocks until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("realtime: upgrade for %s: %v", userID, err)
		return
	}
	c := &Client{UserID: userID, conn: conn}
	h.Register(c)
	h.logger.Infof("realtime: %s connected", userID)

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					h.Unregister(c)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.Unregister(c)
			h.logger.Infof("realtime: %s disconnected", userID)
			return
		}
	}
}
