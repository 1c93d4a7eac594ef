package fanout

import (
	"sync"

	"github.com/korobprog/supermock-app-sub000/internal/realtime"
)

// Hub fans broadcast-bus events out to the WebSocket clients watching each
// session.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*Client]struct{}
	subID    int
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*Client]struct{})}
}

// Attach subscribes the hub to the bus.
func (h *Hub) Attach(bus *realtime.Bus) {
	h.subID = bus.Subscribe(h.dispatch)
}

// Detach unsubscribes the hub from the bus.
func (h *Hub) Detach(bus *realtime.Bus) {
	bus.Unsubscribe(h.subID)
}

// Watch registers a client for one session's events.
func (h *Hub) Watch(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[sessionID] == nil {
		h.watchers[sessionID] = make(map[*Client]struct{})
	}
	h.watchers[sessionID][c] = struct{}{}
}

// Unwatch removes a client. Empty watcher sets are dropped.
func (h *Hub) Unwatch(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.watchers[sessionID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.watchers, sessionID)
		}
	}
}

// WatcherCount reports how many clients watch a session.
func (h *Hub) WatcherCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[sessionID])
}

func (h *Hub) dispatch(ev realtime.SessionEvent) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.watchers[ev.Session.ID]))
	for c := range h.watchers[ev.Session.ID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(ev)
	}
}
