/*
Package chat contains the real-time messaging core.

This file defines the Router, which validates, persists, and fans out one
chat message, then pushes a fresh presence snapshot to every connection.
*/
package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"boltchat/internal/app/user"
	"boltchat/internal/pkg/errs"
	"boltchat/internal/pkg/logx"
)

// MaxContentBytes caps the byte length of a single message's content.
const MaxContentBytes = 5000

// Broadcaster delivers marshaled frames to live connections. The Manager is
// the production implementation.
type Broadcaster interface {
	// Fanout pushes a frame to every connection subscribed to the room.
	Fanout(room string, frame []byte)

	// BroadcastAll pushes a frame to every live connection regardless of room.
	BroadcastAll(frame []byte)
}

// Router validates and persists inbound messages and fans them out.
type Router struct {
	store    Store
	presence *Presence
	out      Broadcaster

	// avatarURL resolves a stored avatar key to the reference clients render.
	avatarURL func(key string) string

	// rejectEmpty enables the whitespace-only content rejection. On by
	// default; switchable because some deployments want the permissive
	// behavior of accepting any string.
	rejectEmpty bool

	logger zerolog.Logger
}

// NewRouter constructs a Router. avatarURL may be nil, in which case avatar
// keys pass through unresolved.
func NewRouter(store Store, presence *Presence, out Broadcaster, avatarURL func(string) string) *Router {
	if avatarURL == nil {
		avatarURL = func(key string) string { return key }
	}

	return &Router{
		store:       store,
		presence:    presence,
		out:         out,
		avatarURL:   avatarURL,
		rejectEmpty: true,
		logger:      logx.Logger().With().Str("component", "Router").Logger(),
	}
}

// SetRejectEmpty toggles the empty-content rejection.
func (rt *Router) SetRejectEmpty(reject bool) {
	rt.rejectEmpty = reject
}

// Send persists one message and fans it out to every current subscriber of
// the room, the sender's connection included. Either the message is both
// persisted and fanned out, or neither happens.
//
// After a successful send it pushes a full presence snapshot to all
// connections; clients rely on that push to refresh their rosters.
func (rt *Router) Send(ctx context.Context, sender *user.User, room, content string) (*user.Message, error) {
	if sender == nil {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	if rt.rejectEmpty && strings.TrimSpace(content) == "" {
		return nil, errs.NewError(errs.ErrEmptyMessage)
	}

	if len(content) > MaxContentBytes {
		return nil, errs.NewError(errs.ErrMessageContentTooLong)
	}

	msg, err := rt.store.CreateMessage(ctx, sender.ID, room, content)
	if err != nil {
		rt.logger.Error().Err(err).
			Int64("sender_id", sender.ID).
			Str("room", room).
			Msg("Failed to persist message. Nothing fanned out.")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	frame, err := MarshalEvent(TypeNewMessage, NewMessagePayload{
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		SenderAvatar: rt.avatarURL(sender.Avatar),
		Room:         room,
		Content:      msg.Content,
		Timestamp:    formatTimestamp(msg.Timestamp),
	})
	if err != nil {
		rt.logger.Error().Err(err).Int64("message_id", msg.ID).Msg("Failed to marshal new_message frame.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	rt.out.Fanout(room, frame)
	rt.BroadcastPresence(ctx)

	return msg, nil
}

// BroadcastPresence pushes a full roster snapshot to every live connection.
// Snapshots are eventually consistent; failures are logged, never surfaced
// to the sender whose message already went out.
func (rt *Router) BroadcastPresence(ctx context.Context) {
	entries, err := rt.presence.Snapshot(ctx)
	if err != nil {
		rt.logger.Error().Err(err).Msg("Failed to build presence snapshot.")
		return
	}

	for i := range entries {
		entries[i].Avatar = rt.avatarURL(entries[i].Avatar)
	}

	frame, err := MarshalEvent(TypeOnlineUsers, entries)
	if err != nil {
		rt.logger.Error().Err(err).Msg("Failed to marshal online_users frame.")
		return
	}

	rt.out.BroadcastAll(frame)
}
