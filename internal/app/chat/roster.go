/*
Package chat contains the real-time messaging core.

This file defines the Roster, the live subscriber set per room identifier.
Membership is runtime-only state, independent of persistence.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"boltchat/internal/pkg/logx"
)

// Roster maps room identifiers to the set of currently subscribed clients.
// All methods are safe for concurrent use.
type Roster struct {
	// mu protects rooms.
	mu sync.RWMutex

	// rooms holds the subscriber set per room identifier. Empty rooms are
	// removed so the map does not accumulate dead identifiers.
	rooms map[string]map[*Client]struct{}

	logger zerolog.Logger
}

// NewRoster constructs an empty Roster.
func NewRoster() *Roster {
	return &Roster{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: logx.Logger().With().Str("component", "Roster").Logger(),
	}
}

// Join adds the client to the room's subscriber set. Idempotent; a client may
// be a member of any number of rooms at once.
func (ro *Roster) Join(c *Client, room string) {
	ro.mu.Lock()
	defer ro.mu.Unlock()

	subs, ok := ro.rooms[room]
	if !ok {
		subs = make(map[*Client]struct{})
		ro.rooms[room] = subs
	}
	subs[c] = struct{}{}
}

// Leave removes the client from the room's subscriber set. No-op when the
// client is not a member or the room is unknown.
func (ro *Roster) Leave(c *Client, room string) {
	ro.mu.Lock()
	defer ro.mu.Unlock()

	ro.removeLocked(c, room)
}

// Drop sweeps the client out of every room it belongs to. Called by the
// gateway on connection teardown so no room retains a dead subscriber.
func (ro *Roster) Drop(c *Client) {
	ro.mu.Lock()
	defer ro.mu.Unlock()

	for room := range ro.rooms {
		ro.removeLocked(c, room)
	}
}

// removeLocked deletes the membership and prunes the room when it empties.
// Caller must hold ro.mu.
func (ro *Roster) removeLocked(c *Client, room string) {
	subs, ok := ro.rooms[room]
	if !ok {
		return
	}

	delete(subs, c)
	if len(subs) == 0 {
		delete(ro.rooms, room)
	}
}

// Subscribers returns the clients currently in the room. Unknown rooms yield
// an empty slice, never an error. The returned slice is a snapshot; callers
// may iterate it without holding any lock.
func (ro *Roster) Subscribers(room string) []*Client {
	ro.mu.RLock()
	defer ro.mu.RUnlock()

	subs := ro.rooms[room]
	out := make([]*Client, 0, len(subs))
	for c := range subs {
		out = append(out, c)
	}
	return out
}

// Contains reports whether the client is currently subscribed to the room.
func (ro *Roster) Contains(c *Client, room string) bool {
	ro.mu.RLock()
	defer ro.mu.RUnlock()

	_, ok := ro.rooms[room][c]
	return ok
}
