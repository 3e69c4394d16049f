package restapi

import (
	"sync"

	"wallet_portfolio/internal/app/port"
	"wallet_portfolio/internal/domain/entity"
)

const subscriberBuffer = 16

// Event is one server-sent event.
type Event struct {
	Name string
	Data any
}

// Hub fans coordinator updates out to SSE subscribers. Slow subscribers miss events instead of blocking.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger port.Logger
}

var _ port.PortfolioListener = (*Hub)(nil)

// NewHub creates an empty Hub.
func NewHub(logger port.Logger) *Hub {
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a subscriber. The returned func unregisters it and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// OnPortfolioState implements port.PortfolioListener.
func (h *Hub) OnPortfolioState(state entity.PortfolioState) {
	h.broadcast(Event{Name: "state", Data: newPortfolioView(state)})
}

// OnPriceSnapshot implements port.PortfolioListener.
func (h *Hub) OnPriceSnapshot(snapshot entity.PriceSnapshot) {
	h.broadcast(Event{Name: "prices", Data: newPricesView(snapshot)})
}

func (h *Hub) broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("Dropping event for slow subscriber", "event", ev.Name)
		}
	}
}
