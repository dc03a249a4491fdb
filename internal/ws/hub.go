package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/observability"
)

// Envelope is the frame every client receives.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub tracks connected clients and fans every event out to all of them.
// Clients filter what concerns them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewHub(metrics *observability.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		metrics: metrics,
		logger:  logger,
	}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.ClientConnected()
}

// Unregister removes a client and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.metrics.ClientDisconnected()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues an encoded frame on every client. Clients whose queue is
// full are dropped.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	var dropped int
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			delete(h.clients, c)
			close(c.send)
			dropped++
		}
	}
	h.mu.Unlock()

	for i := 0; i < dropped; i++ {
		h.metrics.ClientDisconnected()
	}
	if dropped > 0 {
		h.logger.Warn("dropped slow websocket clients", zap.Int("count", dropped))
	}
}

// Publish encodes data under the given event name and broadcasts it locally.
func (h *Hub) Publish(event string, data any) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		h.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	h.Broadcast(frame)
	h.metrics.EventPublished(event, "local")
}

func (h *Hub) PublishConversationUpdate(_ context.Context, conv *domain.PopulatedConversation) {
	h.Publish(domain.EventConversationUpdate, conv)
}

func (h *Hub) PublishNotificationsUpdate(_ context.Context, ev domain.NotificationEvent) {
	h.Publish(domain.EventNotificationsUpdate, ev)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
