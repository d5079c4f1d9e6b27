/*
Package chat contains the real-time messaging core.

This file defines the Presence registry, the authoritative view of which
users are online. Online state is reference-counted per user so that closing
one of several concurrent connections does not mark the user offline while
another connection remains active.
*/
package chat

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"boltchat/internal/pkg/logx"
)

// Presence tracks live connection counts per user id and mirrors the derived
// online flag into the store.
type Presence struct {
	// mu protects conns and is held across the store write that commits a
	// transition, so a last-disconnect and a first-reconnect cannot land
	// their flag writes out of order.
	mu sync.Mutex

	// conns counts active connections per user id. A user is online while
	// the count is positive; entries are removed at zero.
	conns map[int64]int

	store  Store
	logger zerolog.Logger
}

// NewPresence constructs a Presence registry backed by the given store.
func NewPresence(store Store) *Presence {
	return &Presence{
		conns:  make(map[int64]int),
		store:  store,
		logger: logx.Logger().With().Str("component", "Presence").Logger(),
	}
}

// Connect records one more live connection for the user. The stored online
// flag flips true only on the zero-to-one transition.
func (p *Presence) Connect(ctx context.Context, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.conns[userID]++
	if p.conns[userID] != 1 {
		return nil
	}
	return p.store.SetOnline(ctx, userID, true)
}

// Disconnect records one connection teardown. The stored online flag flips
// false only when the user's last connection goes away.
func (p *Presence) Disconnect(ctx context.Context, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.conns[userID]
	if !ok {
		return nil
	}

	n--
	if n > 0 {
		p.conns[userID] = n
		return nil
	}

	delete(p.conns, userID)
	return p.store.SetOnline(ctx, userID, false)
}

// MarkOnline flips the stored flag directly, bypassing the connection count.
// Used by the login flow, which establishes a session before any connection
// exists.
func (p *Presence) MarkOnline(ctx context.Context, userID int64) error {
	return p.store.SetOnline(ctx, userID, true)
}

// MarkOffline flips the stored flag directly. Used by logout.
func (p *Presence) MarkOffline(ctx context.Context, userID int64) error {
	return p.store.SetOnline(ctx, userID, false)
}

// Connections reports the current connection count for a user.
func (p *Presence) Connections(userID int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns[userID]
}

// Snapshot returns the full roster of users with their current online state,
// ordered by id. A user with live connections is reported online even if the
// stored flag lags behind.
func (p *Presence) Snapshot(ctx context.Context) ([]RosterEntry, error) {
	users, err := p.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	entries := make([]RosterEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, RosterEntry{
			ID:     u.ID,
			Name:   u.Name,
			Avatar: u.Avatar,
			Online: u.Online || p.conns[u.ID] > 0,
		})
	}
	p.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
