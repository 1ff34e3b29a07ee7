package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AlertEvent is the message pushed to dashboards when new roll alerts appear.
type AlertEvent struct {
	Type      string             `json:"type"`
	Alerts    []models.RollAlert `json:"alerts"`
	Timestamp time.Time          `json:"timestamp"`
}

// AlertHub manages WebSocket clients and broadcasts roll alert events.
type AlertHub struct {
	clients    map[*alertClient]bool
	broadcast  chan AlertEvent
	register   chan *alertClient
	unregister chan *alertClient
	done       chan struct{}
	mu         sync.RWMutex
	logger     *common.Logger
}

type alertClient struct {
	hub  *AlertHub
	conn *websocket.Conn
	send chan []byte
}

// NewAlertHub creates a new WebSocket hub.
func NewAlertHub(logger *common.Logger) *AlertHub {
	return &AlertHub{
		clients:    make(map[*alertClient]bool),
		broadcast:  make(chan AlertEvent, 64),
		register:   make(chan *alertClient),
		unregister: make(chan *alertClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop. Should be called as a goroutine.
func (h *AlertHub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug().Int("clients", n).Msg("Alert stream client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug().Int("clients", n).Msg("Alert stream client disconnected")

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn().Err(err).Msg("Failed to marshal alert event")
				continue
			}

			h.mu.RLock()
			var slow []*alertClient
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			if len(slow) > 0 {
				h.mu.Lock()
				for _, c := range slow {
					if _, ok := h.clients[c]; ok {
						delete(h.clients, c)
						close(c.send)
					}
				}
				h.mu.Unlock()
			}
		}
	}
}

// Stop signals the event loop to exit and disconnects every client.
func (h *AlertHub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// BroadcastAlerts queues new alerts for every connected client.
func (h *AlertHub) BroadcastAlerts(alerts []models.RollAlert) {
	if len(alerts) == 0 {
		return
	}
	event := AlertEvent{Type: "roll_alerts", Alerts: alerts, Timestamp: time.Now().UTC()}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Int("alerts", len(alerts)).Msg("Alert broadcast channel full, dropping event")
	}
}

// ServeWS upgrades an HTTP connection to WebSocket and registers the client.
func (h *AlertHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &alertClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 16),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// ClientCount returns the number of connected clients.
func (h *AlertHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *alertClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the client going away.
func (c *alertClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
