package sse

import (
	"net/http"
	"time"

	"github.com/kbukum/rxlab/logger"
)

// DefaultKeepAlive is the interval between keep-alive comments. It stays
// below common proxy idle timeouts.
const DefaultKeepAlive = 30 * time.Second

type serveConfig struct {
	keepAlive time.Duration
	initial   []Event
	replay    func() ([]Event, error)
	client    []ClientOption
}

// ServeOption configures ServeSSE.
type ServeOption func(*serveConfig)

// WithKeepAlive overrides DefaultKeepAlive.
func WithKeepAlive(d time.Duration) ServeOption {
	return func(c *serveConfig) {
		if d > 0 {
			c.keepAlive = d
		}
	}
}

// WithInitialEvents writes events right after the connected event, before
// anything broadcast by the hub.
func WithInitialEvents(events ...Event) ServeOption {
	return func(c *serveConfig) { c.initial = append(c.initial, events...) }
}

// WithReplay calls fn once the client is registered and writes its events
// after the initial ones. Anything broadcast after fn reads its state is
// already queued for the client, so a snapshot taken in fn has no gap.
func WithReplay(fn func() ([]Event, error)) ServeOption {
	return func(c *serveConfig) { c.replay = fn }
}

// WithClientOptions passes options to the registered Client.
func WithClientOptions(opts ...ClientOption) ServeOption {
	return func(c *serveConfig) { c.client = append(c.client, opts...) }
}

type connectedEvent struct {
	ClientID string `json:"client_id"`
}

// ServeSSE streams hub events for clientID until the request context ends
// or the hub stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts ...ServeOption) {
	cfg := serveConfig{keepAlive: DefaultKeepAlive}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := logger.WithComponent("sse").WithContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Streaming not supported", logger.Fields("client_id", clientID))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived responses must not hit the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("Could not clear write deadline", logger.MergeWithError(logger.Fields("client_id", clientID), err))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, cfg.client...)
	if !hub.Register(client) {
		http.Error(w, "event stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	initial := cfg.initial
	if cfg.replay != nil {
		events, err := cfg.replay()
		if err != nil {
			log.Error("Replay failed", logger.MergeWithError(logger.Fields("client_id", clientID), err))
			http.Error(w, "event stream unavailable", http.StatusInternalServerError)
			return
		}
		initial = append(initial[:len(initial):len(initial)], events...)
	}

	connected, _ := NewJSONEvent(EventConnected, connectedEvent{ClientID: clientID})
	if _, err := connected.WriteTo(w); err != nil {
		return
	}
	for _, ev := range initial {
		if _, err := ev.WriteTo(w); err != nil {
			return
		}
	}
	flusher.Flush()
	log.Debug("Client connected", logger.Fields("client_id", clientID, "remote_addr", r.RemoteAddr))

	keepAlive := time.NewTicker(cfg.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("Client disconnected", logger.Fields("client_id", clientID))
			return
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			if _, err := ev.WriteTo(w); err != nil {
				log.Debug("Write failed", logger.MergeWithError(logger.Fields("client_id", clientID), err))
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
