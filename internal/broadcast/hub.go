// Package broadcast fans reservation lifecycle events out to every connected
// calendar viewer. Delivery is at-most-once per subscriber with no replay; a
// client that connects late or drops its connection re-fetches the grid.
package broadcast

import (
	"sync"

	"github.com/dvalenz/roomreserve/internal/domain"
)

const (
	EventNewReservation       = "new_reservation"
	EventUpdatedReservation   = "updated_reservation"
	EventCancelledReservation = "cancelled_reservation"
)

// Event is the tagged envelope pushed over the wire.
type Event struct {
	Type string              `json:"type"`
	Data *domain.Reservation `json:"data"`
}

// Hub fans events out to subscribers over per-subscriber buffered channels.
// Each channel preserves publish order; a full channel drops the event for
// that subscriber instead of blocking the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Event
	nextID      uint64
	bufferSize  int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint64]chan Event),
		bufferSize:  32,
	}
}

func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
			// Slow subscriber; it resynchronizes with a full fetch.
		}
	}
}

// Subscribe registers a listener and returns its channel plus a cleanup
// function. The channel is closed on unsubscribe.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufferSize)
	h.subscribers[id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		if sub, ok := h.subscribers[id]; ok {
			delete(h.subscribers, id)
			close(sub)
		}
		h.mu.Unlock()
	}

	return ch, unsubscribe
}
