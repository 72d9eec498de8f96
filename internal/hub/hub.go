// Package hub owns the websocket side of every connection: the socket,
// its buffered outbound queue, and delivery of engine events to the wire.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/config"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
	"github.com/Ladinawan-01/LiveChat/pkg/log"
)

// Hub tracks live websocket clients by connection id and serializes engine
// events to them. Room membership and presence live in the engine, not
// here; the hub only moves bytes.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	config  config.WebSocketConfig
}

// NewHub creates an empty Hub.
func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		config:  cfg,
	}
}

// Attach subscribes the hub to every engine event on b.
func (h *Hub) Attach(b *bus.Bus) {
	b.SubscribeAll(h.deliver)
}

// Register adds a client to the table.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	log.L().Debug().Str(log.FieldConnID, c.ID).Msg("client registered")
}

// Unregister removes a client and closes its send queue. Safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Send)
	}
	h.mu.Unlock()
	log.L().Debug().Str(log.FieldConnID, c.ID).Msg("client unregistered")
}

// ClientCount returns the number of live clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// deliver is the bus handler: it wraps the event in its wire envelope and
// enqueues it to the addressed clients (all of them for a broadcast). The
// enqueue never blocks; a client with a full queue misses the event and is
// expected to fall behind until its reader gives up.
func (h *Hub) deliver(evt domain.Event, targets []string) {
	data, err := json.Marshal(domain.EventMessage{
		Type:    evt.EventType(),
		Payload: evt,
	})
	if err != nil {
		log.L().Error().Err(err).Str("event", evt.EventType()).Msg("failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if targets == nil {
		for _, c := range h.clients {
			c.enqueue(data)
		}
		return
	}
	for _, id := range targets {
		if c, ok := h.clients[id]; ok {
			c.enqueue(data)
		}
	}
}
