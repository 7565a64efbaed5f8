package tracking

import (
	"sync"

	"github.com/google/uuid"
)

// Event is a live location update fanned out to in-process subscribers.
type Event struct {
	OrderID   uuid.UUID `json:"order_id"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// Broker fans location events out to per-order subscribers. Delivery is FIFO
// within an order; there is no ordering guarantee across orders.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[uuid.UUID]map[int]chan Event
	buffer int
}

// NewBroker constructs a broker whose subscriber channels hold up to buffer
// undelivered events each.
func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 16
	}
	return &Broker{
		subs:   make(map[uuid.UUID]map[int]chan Event),
		buffer: buffer,
	}
}

// Subscribe registers interest in one order's events. The returned channel is
// closed when the unsubscribe func runs. Slow subscribers that fill their
// buffer drop events rather than block the publisher.
func (b *Broker) Subscribe(orderID uuid.UUID) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan Event, b.buffer)
	if b.subs[orderID] == nil {
		b.subs[orderID] = make(map[int]chan Event)
	}
	b.subs[orderID][id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[orderID]; ok {
			if existing, ok := set[id]; ok {
				delete(set, id)
				close(existing)
			}
			if len(set) == 0 {
				delete(b.subs, orderID)
			}
		}
	}
	return ch, unsubscribe
}

// Publish delivers the event to every subscriber of its order.
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[event.OrderID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers an order currently has.
func (b *Broker) SubscriberCount(orderID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[orderID])
}
