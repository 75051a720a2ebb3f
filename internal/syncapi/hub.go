package syncapi

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// subscriberBuffer bounds the events queued for one slow subscriber. A full
// queue drops the event; the subscriber already has one pending re-poll hint.
const subscriberBuffer = 4

// Hub fans change events out to websocket subscribers.
type Hub struct {
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[string]chan []byte
	closed bool
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger, subs: make(map[string]chan []byte)}
}

// Subscribe registers a subscriber and returns its id and event channel.
// After Close the channel is returned already closed.
func (h *Hub) Subscribe() (string, <-chan []byte) {
	id := uuid.New().String()
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch
	}
	h.subs[id] = ch
	h.mu.Unlock()

	syncSubscribers.Inc()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		close(ch)
		syncSubscribers.Dec()
	}
}

// Close closes every subscriber channel, which ends their connections with
// a close frame. Later subscribers are closed immediately. Close is
// idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
		syncSubscribers.Dec()
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// NotifyChanged broadcasts a graph_changed event.
func (h *Hub) NotifyChanged() {
	msg, err := json.Marshal(syncproto.ChangeEvent{Type: syncproto.EventGraphChanged, At: time.Now().UTC()})
	if err != nil {
		h.logger.Error("Failed to encode change event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			h.logger.Debug("Subscriber queue full, dropping event", zap.String("subscriber", id))
		}
	}
	syncEventsSent.Inc()
}
