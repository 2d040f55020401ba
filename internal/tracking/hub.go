package tracking

import (
	"log/slog"
	"sync"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

const subscriberBuffer = 8

// Hub fans out delivery snapshots to the watchers of an order.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan model.Delivery]struct{}
	closed      bool
	logger      *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[int64]map[chan model.Delivery]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a watcher for orderID. The returned cancel func must be called once done.
func (h *Hub) Subscribe(orderID int64) (<-chan model.Delivery, func()) {
	ch := make(chan model.Delivery, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	set, ok := h.subscribers[orderID]
	if !ok {
		set = make(map[chan model.Delivery]struct{})
		h.subscribers[orderID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.unsubscribe(orderID, ch) })
	}
}

func (h *Hub) unsubscribe(orderID int64, ch chan model.Delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subscribers[orderID]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	close(ch)
	if len(set) == 0 {
		delete(h.subscribers, orderID)
	}
}

// Publish hands d to every watcher of orderID without blocking.
// A watcher whose buffer is full misses the snapshot.
func (h *Hub) Publish(orderID int64, d model.Delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[orderID] {
		select {
		case ch <- d:
		default:
			h.logger.Warn("tracking subscriber lagging, update dropped",
				slog.Int64("order_id", orderID),
				slog.Int64("delivery_id", d.ID))
		}
	}
}

// Subscribers returns how many watchers follow orderID.
func (h *Hub) Subscribers(orderID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[orderID])
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for orderID, set := range h.subscribers {
		for ch := range set {
			close(ch)
		}
		delete(h.subscribers, orderID)
	}
}
