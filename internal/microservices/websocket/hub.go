package websocket

import (
	"context"
	"sync"

	"cinetrack/internal/logging"
	"cinetrack/internal/metrics"
	"cinetrack/internal/microservices/http-api/service"
)

// delivery is one event addressed to a set of users.
type delivery struct {
	userIDs []string
	payload []byte
}

// Hub tracks open feed sockets per user. Register, unregister and fan-out
// all run on the Run goroutine; the mutex only guards reads from other goroutines.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.Register:
			h.add(c)
		case c := <-h.Unregister:
			h.remove(c)
		case d := <-h.deliver:
			h.fanOut(d)
		}
	}
}

// SendToUsers queues event for every socket of userIDs. It never blocks the
// caller; events are dropped when the hub is saturated.
func (h *Hub) SendToUsers(userIDs []string, event service.LiveEvent) {
	if len(userIDs) == 0 {
		return
	}
	payload, err := NewMessage(event.Type, event.Data).ToJSON()
	if err != nil {
		logging.Error().Err(err).Str("type", event.Type).Msg("failed to encode live event")
		return
	}
	select {
	case h.deliver <- delivery{userIDs: userIDs, payload: payload}:
	default:
		logging.Warn().Str("type", event.Type).Int("recipients", len(userIDs)).Msg("live feed queue full, event dropped")
	}
}

// register and unregister give up once Run has returned.
func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of open sockets.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// IsOnline reports whether userID has at least one open socket.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	metrics.FeedClients.Inc()
	logging.Debug().Str("user_id", c.UserID).Str("client_id", c.ID).Msg("feed client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			c.closeSend()
			metrics.FeedClients.Dec()
		}
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	logging.Debug().Str("user_id", c.UserID).Str("client_id", c.ID).Msg("feed client disconnected")
}

func (h *Hub) fanOut(d delivery) {
	var slow []*Client
	h.mu.RLock()
	for _, id := range d.userIDs {
		for c := range h.clients[id] {
			if !c.SendMessage(d.payload) {
				slow = append(slow, c)
			}
		}
	}
	h.mu.RUnlock()

	// a client that cannot keep up is disconnected rather than stalling the hub
	for _, c := range slow {
		logging.Warn().Str("user_id", c.UserID).Msg("feed client too slow, disconnecting")
		h.remove(c)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.closeSend()
			metrics.FeedClients.Dec()
		}
		delete(h.clients, userID)
	}
}
