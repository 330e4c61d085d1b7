package sse

import (
	"path"
	"sync"
	"sync/atomic"

	"github.com/kbukum/rxlab/logger"
)

// DefaultClientBuffer is the number of events queued per client before
// new events are dropped for it.
const DefaultClientBuffer = 256

// Broadcaster fans events out to clients by id pattern.
type Broadcaster interface {
	Broadcast(pattern string, ev Event) bool
	TryBroadcast(pattern string, ev Event) bool
}

// Client is one connected SSE consumer.
type Client struct {
	id      string
	events  chan Event
	dropped atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	buffer int
}

// WithBuffer sets the per-client queue size.
func WithBuffer(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// NewClient creates a client with the given id.
func NewClient(id string, opts ...ClientOption) *Client {
	cfg := clientConfig{buffer: DefaultClientBuffer}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{id: id, events: make(chan Event, cfg.buffer)}
}

func (c *Client) ID() string { return c.id }

// Events returns the client's queue. It is closed when the client is
// unregistered or the hub stops.
func (c *Client) Events() <-chan Event { return c.events }

// Dropped returns how many events were discarded because the queue was
// full.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Send queues ev without blocking and reports whether it was queued.
func (c *Client) Send(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

func (c *Client) close() { close(c.events) }

type membership struct {
	client *Client
	ack    chan struct{}
}

type message struct {
	pattern string
	event   Event
}

// Hub tracks clients and broadcasts events to them. Membership changes
// and broadcasts are serialized through Run.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	register   chan membership
	unregister chan membership
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once
	log        *logger.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan membership),
		unregister: make(chan membership),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        logger.WithComponent("sse"),
	}
}

// Run processes membership and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case m := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[m.client.id]; ok && old != m.client {
				old.close()
			}
			h.clients[m.client.id] = m.client
			total := len(h.clients)
			h.mu.Unlock()
			close(m.ack)
			h.log.Debug("Client registered", logger.Fields("client_id", m.client.id, "total_clients", total))
		case m := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[m.client.id]; ok && cur == m.client {
				delete(h.clients, m.client.id)
				cur.close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			close(m.ack)
			h.log.Debug("Client unregistered", logger.Fields("client_id", m.client.id, "total_clients", total))
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// Stop closes every client and makes Run return. Safe to call twice.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Done is closed once Stop has been called.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Register adds a client and returns once the hub has recorded it. It
// returns false if the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	return h.send(h.register, c)
}

// Unregister removes a client and closes its queue. A replaced or unknown
// client is ignored.
func (h *Hub) Unregister(c *Client) bool {
	return h.send(h.unregister, c)
}

func (h *Hub) send(ch chan membership, c *Client) bool {
	m := membership{client: c, ack: make(chan struct{})}
	select {
	case ch <- m:
	case <-h.done:
		return false
	}
	select {
	case <-m.ack:
		return true
	case <-h.done:
		return false
	}
}

// Broadcast queues ev for every client whose id matches pattern. It
// blocks while the hub queue is full and returns false once the hub is
// stopped.
func (h *Hub) Broadcast(pattern string, ev Event) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- message{pattern: pattern, event: ev}:
		return true
	case <-h.done:
		return false
	}
}

// TryBroadcast is Broadcast without blocking: it returns false if the hub
// queue is full or the hub is stopped.
func (h *Hub) TryBroadcast(pattern string, ev Event) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- message{pattern: pattern, event: ev}:
		return true
	default:
		h.log.Warn("Broadcast queue full, dropping event", logger.Fields("pattern", pattern, "event", ev.Name))
		return false
	}
}

func (h *Hub) fanOut(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.clients {
		matched, err := path.Match(msg.pattern, id)
		if err != nil {
			h.log.Error("Bad client pattern", logger.MergeWithError(logger.Fields("pattern", msg.pattern), err))
			return
		}
		if matched && !c.Send(msg.event) {
			h.log.Warn("Client queue full, dropping event", logger.Fields("client_id", id, "dropped", c.Dropped()))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client returns a registered client by id, or nil.
func (h *Hub) Client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

var _ Broadcaster = (*Hub)(nil)
