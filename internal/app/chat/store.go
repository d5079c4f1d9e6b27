/*
Package chat contains the real-time messaging core.

This file defines the persistence contract the core consumes. The concrete
PostgreSQL implementation lives in internal/app/db; the core never assumes
exclusive access and relies on the store to serialize its own writes.
*/
package chat

import (
	"context"
	"time"

	"boltchat/internal/app/user"
)

// DefaultHistoryLimit bounds room history queries when the caller does not
// supply a limit of its own.
const DefaultHistoryLimit = 100

// HistoryEntry is one room history row: a message joined with the sender's
// current display name and avatar key.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar string    `json:"sender_avatar"`
	Room         string    `json:"room"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
}

// RosterEntry is one row of a full presence snapshot.
type RosterEntry struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Online bool   `json:"online"`
}

// Store is the durable record of users and messages.
//
// Lookup methods return (nil, nil) when no row matches; errors are reserved
// for store failures. CreateUser reports a duplicate email through an error
// the caller can classify (see internal/app/db).
type Store interface {
	// CreateUser persists a new account. Email must already be
	// lowercase-normalized by the caller.
	CreateUser(ctx context.Context, email, name, passwordHash string) (*user.User, error)

	// UserByEmail looks up an account by its normalized email.
	UserByEmail(ctx context.Context, email string) (*user.User, error)

	// UserByID looks up an account by id.
	UserByID(ctx context.Context, id int64) (*user.User, error)

	// ListUsers returns every account. Order is unspecified.
	ListUsers(ctx context.Context) ([]user.User, error)

	// SetOnline flips the stored online flag. Idempotent.
	SetOnline(ctx context.Context, id int64, online bool) error

	// UpdateProfile mutates the display name and avatar key and returns the
	// updated account.
	UpdateProfile(ctx context.Context, id int64, name, avatar string) (*user.User, error)

	// CreateMessage persists one message, assigning its id and UTC timestamp.
	CreateMessage(ctx context.Context, senderID int64, room, content string) (*user.Message, error)

	// RoomHistory returns the most recent limit messages of a room in
	// ascending timestamp order, joined with sender details.
	RoomHistory(ctx context.Context, room string, limit int) ([]HistoryEntry, error)
}
