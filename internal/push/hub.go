// Package push fans session events out to connected players over SSE and
// websocket connections.
package push

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/dominotrain/internal/model"
)

// message is one encoded push envelope
type message struct {
	msgType string
	data    []byte
}

// delivery addresses a message to one player, or to everyone when recipient is empty
type delivery struct {
	recipient model.PlayerID
	msg       message
}

// Client is one connection of one player to a session hub
type Client struct {
	id          string
	playerID    model.PlayerID
	transport   string
	send        chan message
	connectedAt time.Time
}

// NewClient creates a client for the player
func NewClient(playerID model.PlayerID, transport string) *Client {
	return &Client{
		id:          uuid.NewString(),
		playerID:    playerID,
		transport:   transport,
		send:        make(chan message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Hub manages the connections of a single session. Membership changes are
// synchronous; delivery runs on the hub's own goroutine.
type Hub struct {
	sessionID model.SessionID
	clients   map[*Client]bool
	closed    bool
	mu        sync.RWMutex
	logger    *slog.Logger

	deliver   chan delivery
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a new Hub for a session
func NewHub(sessionID model.SessionID, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID: sessionID,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("session_id", string(sessionID))),
		deliver:   make(chan delivery, 256),
		done:      make(chan struct{}),
	}
}

// Run starts the hub's event loop. Deliveries queued before Close are still
// flushed to the clients.
func (h *Hub) Run() {
	h.logger.Info("push hub started")
	for {
		select {
		case d := <-h.deliver:
			h.dispatch(d)

		case <-h.done:
			h.drain()
			h.mu.Lock()
			h.closed = true
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("push hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

func (h *Hub) drain() {
	for {
		select {
		case d := <-h.deliver:
			h.dispatch(d)
		default:
			return
		}
	}
}

func (h *Hub) dispatch(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sentCount := 0
	droppedCount := 0
	for client := range h.clients {
		if d.recipient != "" && client.playerID != d.recipient {
			continue
		}
		select {
		case client.send <- d.msg:
			sentCount++
		default:
			droppedCount++
			h.logger.Warn("push message dropped, client buffer full",
				slog.String("player_id", string(client.playerID)),
				slog.String("type", d.msg.msgType))
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("push delivery partial failure",
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// Register adds a client to the hub. A client registering with a stopped hub
// has its send channel closed straight away.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(client.send)
		return
	}
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("push client registered",
		slog.String("player_id", string(client.playerID)),
		slog.String("client_id", client.id),
		slog.String("transport", client.transport),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("push client unregistered",
		slog.String("player_id", string(client.playerID)),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

// Send queues a message for one player, or for everyone when recipient is empty
func (h *Hub) Send(recipient model.PlayerID, msgType string, data []byte) {
	select {
	case h.deliver <- delivery{recipient: recipient, msg: message{msgType: msgType, data: data}}:
	default:
		h.logger.Warn("push delivery dropped, hub buffer full", slog.String("type", msgType))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HasOtherClient returns true if the player has a connection besides the given one
func (h *Hub) HasOtherClient(playerID model.PlayerID, except *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client != except && client.playerID == playerID {
			return true
		}
	}
	return false
}

// HubManager manages hubs for all sessions. Hubs are created on the first
// attach and dropped when their session closes or they sit empty.
type HubManager struct {
	hubs   map[model.SessionID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.SessionID]*Hub),
		logger: logger.With(slog.String("component", "push")),
	}
}

// Attach registers a client with the session's hub, creating the hub if
// needed. Holding the manager lock keeps CleanupEmptyHubs from closing the
// hub between lookup and registration.
func (m *HubManager) Attach(sessionID model.SessionID, client *Client) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[sessionID]
	if !ok {
		hub = NewHub(sessionID, m.logger)
		m.hubs[sessionID] = hub
		go hub.Run()
	}
	hub.Register(client)
	return hub
}

// Detach unregisters a client and reports whether it was the player's last
// connection to the session
func (m *HubManager) Detach(hub *Hub, client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub.Unregister(client)
	if current, ok := m.hubs[hub.sessionID]; ok && current != hub {
		return !current.HasOtherClient(client.playerID, client)
	}
	return !hub.HasOtherClient(client.playerID, client)
}

// GetHub returns the hub for a session, or nil if it doesn't exist
func (m *HubManager) GetHub(sessionID model.SessionID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[sessionID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(sessionID model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[sessionID]; ok {
		hub.Close()
		delete(m.hubs, sessionID)
		m.logger.Info("push hub removed", slog.String("session_id", string(sessionID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("push empty hubs cleaned up", slog.Int("removed", removedCount))
	}
}

// Stats counts live hubs and their connections
func (m *HubManager) Stats() (hubs, clients int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, hub := range m.hubs {
		clients += hub.ClientCount()
	}
	return len(m.hubs), clients
}

// CloseAll stops every hub, for shutdown
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
