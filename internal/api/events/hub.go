package events

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/tabletop-companion/internal/model"
)

// Hub fans session events out to the clients watching one session
type Hub struct {
	sessionID model.SessionID
	clients   map[*Client]bool
	mu        sync.RWMutex
	logger    *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub for a session. Call Run to start it.
func NewHub(sessionID model.SessionID, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID:  sessionID,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("session_id", string(sessionID))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns after Close.
func (h *Hub) Run() {
	h.logger.Debug("event hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("event client connected",
				slog.String("remote", client.remote),
				slog.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("event client disconnected",
					slog.String("remote", client.remote),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", count))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			h.drain()
			h.mu.Lock()
			count := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("event hub stopped", slog.Int("disconnected_clients", count))
			return
		}
	}
}

func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	dropped := 0
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			dropped++
		}
	}
	h.mu.RUnlock()
	if dropped > 0 {
		h.logger.Warn("event dropped for slow clients", slog.Int("dropped", dropped))
	}
}

// drain delivers events queued before Close
func (h *Hub) drain() {
	for {
		select {
		case message := <-h.broadcast:
			h.deliver(message)
		default:
			return
		}
	}
}

// Register adds a client. It reports false when the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastEvent queues a named event for every client
func (h *Hub) BroadcastEvent(name, data string) {
	select {
	case h.broadcast <- formatMessage(name, data):
	default:
		h.logger.Warn("event broadcast dropped, hub buffer full", slog.String("event", name))
	}
}

// Close stops the hub and disconnects its clients
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatMessage renders one server-sent event. Each data line gets its
// own "data:" prefix.
func formatMessage(name, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + name + "\n")
	lines := strings.Split(strings.TrimSuffix(strings.ReplaceAll(data, "\r", ""), "\n"), "\n")
	for _, line := range lines {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// HubManager owns one hub per watched session
type HubManager struct {
	hubs   map[model.SessionID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.SessionID]*Hub),
		logger: logger.With(slog.String("component", "events")),
	}
}

// GetOrCreateHub returns the session's hub, starting one if needed
func (m *HubManager) GetOrCreateHub(id model.SessionID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[id]; ok {
		return hub
	}
	hub := NewHub(id, m.logger)
	m.hubs[id] = hub
	go hub.Run()
	return hub
}

// GetHub returns the session's hub, or nil when nobody is watching
func (m *HubManager) GetHub(id model.SessionID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[id]
}

// RemoveHub closes and forgets the session's hub
func (m *HubManager) RemoveHub(id model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[id]; ok {
		hub.Close()
		delete(m.hubs, id)
	}
}

// CloseAll closes every hub
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}

// CleanupEmptyHubs closes hubs that have no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("empty event hubs removed", slog.Int("removed", removed))
	}
}
