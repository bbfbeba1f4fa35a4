// Package websocket pushes dataset lifecycle events to interactive clients.
// The only server-initiated message today is dataset_reloaded, which tells
// connected dashboards to refetch filter options and rerun their aggregation.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"enrollscope/internal/infrastructure"
)

// Message types pushed to clients.
const (
	TypeConnected       = "connected"
	TypeDatasetReloaded = "dataset_reloaded"
)

// Message is the envelope for every server-to-client frame.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ReloadEvent is the payload of a dataset_reloaded message.
type ReloadEvent struct {
	RecordCount int `json:"record_count"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	quit       chan struct{}

	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewHub creates a hub. Metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		quit:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
	}
}

// Run processes register/unregister/broadcast events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			h.setClientGauge(count)
			h.logger.Info("client connected",
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("client_count", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.setClientGauge(count)
			h.logger.Info("client disconnected",
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("client_count", count))

		case payload := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer; drop the frame rather than block the hub.
					h.logger.Warn("dropping frame for slow client",
						slog.String("remote_addr", client.remoteAddr))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	close(h.quit)
}

// BroadcastDatasetReloaded tells connected clients the dataset was swapped.
func (h *Hub) BroadcastDatasetReloaded(recordCount int) {
	h.Broadcast(Message{
		Type:      TypeDatasetReloaded,
		Timestamp: time.Now(),
		Data:      ReloadEvent{RecordCount: recordCount},
	})
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.setClientGauge(0)
	h.logger.Info("hub stopped")
}

func (h *Hub) setClientGauge(count int) {
	if h.metrics != nil {
		h.metrics.WebSocketClients.Set(float64(count))
	}
}
