package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/realtime"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// Message is a change event as pushed to browsers
type Message struct {
	Type      realtime.EventType `json:"type"`
	Table     string             `json:"table"`
	ID        string             `json:"id,omitempty"`
	Record    json.RawMessage    `json:"record,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	table string
}

// Hub manages WebSocket connections per table
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewHub creates a new Hub. An empty allowedOrigins list, or one holding
// "*", accepts any origin.
func NewHub(log logger.Logger, m *metrics.Metrics, allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		log:        log,
		metrics:    m,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for table, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, table)
			}
			h.mu.Unlock()
			h.setGauge()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.table] == nil {
				h.clients[client.table] = make(map[*Client]bool)
			}
			h.clients[client.table][client] = true
			h.log.Debug("websocket client registered", "table", client.table, "total", len(h.clients[client.table]))
			h.mu.Unlock()
			h.setGauge()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
			h.setGauge()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.log.Error("failed to marshal websocket message", "error", err)
				continue
			}

			h.mu.Lock()
			targets := 0
			for _, table := range []string{message.Table, realtime.AllTables} {
				for client := range h.clients[table] {
					targets++
					select {
					case client.send <- data:
					default:
						// slow reader, drop it
						h.removeLocked(client)
					}
				}
				if message.Table == realtime.AllTables {
					break
				}
			}
			h.mu.Unlock()
			h.setGauge()

			h.log.Debug("websocket broadcast", "table", message.Table, "type", string(message.Type), "clients", targets)
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.table]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	h.log.Debug("websocket client unregistered", "table", client.table, "remaining", len(clients))
	if len(clients) == 0 {
		delete(h.clients, client.table)
	}
}

func (h *Hub) setGauge() {
	if h.metrics == nil {
		return
	}
	h.metrics.WebSocketClients.Set(float64(h.ClientCount("")))
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// BroadcastChange forwards a change event to clients watching its table
// and to clients watching every table. It has the realtime.Handler shape
// so the hub can subscribe to the broker directly.
func (h *Hub) BroadcastChange(ev realtime.ChangeEvent) {
	msg := &Message{
		Type:      ev.Type,
		Table:     ev.Table,
		ID:        ev.ID,
		Record:    ev.Record,
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount returns the clients watching table, or all clients when
// table is empty.
func (h *Hub) ClientCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if table != "" {
		return len(h.clients[table])
	}
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}
