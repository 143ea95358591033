package kds

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	EventReservationCreated = "reservation_created"
	EventReservationUpdated = "reservation_updated"
	EventReservationStatus  = "reservation_status"
	EventReservationDeleted = "reservation_deleted"
	EventOrderCreated       = "order_created"
	EventOrderUpdated       = "order_updated"
	EventOrderDeleted       = "order_deleted"
	EventRevenueUpdated     = "revenue_updated"
	EventMenuUpdated        = "menu_updated"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a client may fall behind before it is
	// dropped.
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	At    time.Time   `json:"at"`
}

type client struct {
	conn     *websocket.Conn
	username string
	send     chan []byte
}

// Hub fans committed back-office changes out to connected dashboards.
type Hub struct {
	clients  map[*client]struct{}
	mutex    sync.Mutex
	upgrader websocket.Upgrader
}

// NewHub accepts websocket upgrades from the given browser origins. "*"
// allows any origin. Requests without an Origin header are always accepted.
func NewHub(origins []string) *Hub {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeWS upgrades the request and blocks until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, username string) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: ws, username: username, send: make(chan []byte, sendBuffer)}
	h.register(c)
	defer h.unregister(c)
	go h.writePump(c)

	// the feed is one-way; reading only detects the close
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (h *Hub) register(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[c] = struct{}{}
	utils.InfoLogger.WithFields(logrus.Fields{
		"user":    c.username,
		"clients": len(h.clients),
	}).Info("live feed client connected")
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

// writePump is the only writer of a client connection.
func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.WithError(err).WithField("user", c.username).Error("live feed write failed")
			h.unregister(c)
			return
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast queues one event for every client without waiting on the network.
// Clients whose queue is full are dropped. A nil hub is a no-op.
func (h *Hub) Broadcast(event string, data interface{}) {
	if h == nil {
		return
	}

	payload, err := json.Marshal(Message{Event: event, Data: data, At: time.Now().UTC()})
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("event", event).Error("marshal live feed message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			utils.ErrorLogger.WithField("user", c.username).Error("live feed client too slow, dropping")
			h.dropLocked(c)
		}
	}
}
