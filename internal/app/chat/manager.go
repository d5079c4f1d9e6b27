/*
Package chat contains the real-time messaging core.

This file defines the Manager, the session/connection gateway. It owns the
set of live clients, wires the Roster, Presence, and Router together, and
translates connection lifecycle events into calls on them. All three
collaborators are injected at process start; there is no hidden global state.
*/
package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"boltchat/internal/pkg/logx"
)

// Manager is the gateway between transport connections and the messaging
// core. It implements Broadcaster for the Router.
type Manager struct {
	// mu protects clients.
	mu sync.RWMutex

	// clients holds every live connection, across all rooms.
	clients map[*Client]struct{}

	roster   *Roster
	presence *Presence
	router   *Router

	logger zerolog.Logger
}

// NewManager constructs the gateway and its collaborators around the given
// store. avatarURL resolves stored avatar keys for wire payloads; nil leaves
// keys unresolved.
func NewManager(store Store, avatarURL func(string) string) *Manager {
	m := &Manager{
		clients:  make(map[*Client]struct{}),
		roster:   NewRoster(),
		presence: NewPresence(store),
		logger:   logx.Logger().With().Str("component", "Manager").Logger(),
	}
	m.router = NewRouter(store, m.presence, m, avatarURL)
	return m
}

// Roster exposes the room membership tracker.
func (m *Manager) Roster() *Roster { return m.roster }

// Presence exposes the presence registry.
func (m *Manager) Presence() *Presence { return m.presence }

// Router exposes the message router.
func (m *Manager) Router() *Router { return m.router }

// Register binds an authenticated connection into the gateway: the client
// joins the global room and its user's connection count goes up.
func (m *Manager) Register(ctx context.Context, c *Client) {
	m.mu.Lock()
	m.clients[c] = struct{}{}
	total := len(m.clients)
	m.mu.Unlock()

	m.roster.Join(c, GlobalRoom)

	if err := m.presence.Connect(ctx, c.user.ID); err != nil {
		m.logger.Error().Err(err).Int64("user_id", c.user.ID).Msg("Failed to mark user online.")
	}

	m.logger.Info().
		Int64("user_id", c.user.ID).
		Int("total_clients", total).
		Msg("Client registered.")
}

// Unregister tears a connection down: it is swept from every room, its
// user's connection count goes down, and the transport is closed. Idempotent.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	_, ok := m.clients[c]
	if ok {
		delete(m.clients, c)
	}
	total := len(m.clients)
	m.mu.Unlock()

	if !ok {
		return
	}

	m.roster.Drop(c)

	ctx := context.Background()
	if err := m.presence.Disconnect(ctx, c.user.ID); err != nil {
		m.logger.Error().Err(err).Int64("user_id", c.user.ID).Msg("Failed to update presence on disconnect.")
	}

	c.shutdown()

	m.logger.Info().
		Int64("user_id", c.user.ID).
		Int("total_clients", total).
		Msg("Client unregistered.")
}

// Fanout pushes a frame to every subscriber of the room. Clients whose send
// queue is full are unregistered rather than allowed to stall delivery.
func (m *Manager) Fanout(room string, frame []byte) {
	for _, c := range m.roster.Subscribers(room) {
		if !c.enqueue(frame) {
			m.logger.Warn().Int64("user_id", c.user.ID).Msg("Send queue full, dropping client.")
			m.Unregister(c)
		}
	}
}

// BroadcastAll pushes a frame to every live connection regardless of room.
func (m *Manager) BroadcastAll(frame []byte) {
	m.mu.RLock()
	targets := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(frame) {
			m.logger.Warn().Int64("user_id", c.user.ID).Msg("Send queue full, dropping client.")
			m.Unregister(c)
		}
	}
}

// ClientCount reports the number of live connections.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Shutdown closes every live connection. Called during graceful server stop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	targets := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		targets = append(targets, c)
	}
	m.clients = make(map[*Client]struct{})
	m.mu.Unlock()

	for _, c := range targets {
		m.roster.Drop(c)
		c.shutdown()
	}

	m.logger.Info().Int("closed", len(targets)).Msg("Manager shutdown complete.")
}
