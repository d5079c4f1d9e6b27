/*
Package user contains the core data structures for accounts and chat messages.

It defines the persisted representation of a registered user and of a single
chat message, shared between the persistence layer, the chat core, and the
HTTP handlers.
*/
package user

import "time"

// User represents a registered account.
type User struct {
	// ID is the store-assigned numeric identifier, immutable after creation.
	ID int64 `json:"id"`

	// Email is the unique, lowercase-normalized login identifier.
	Email string `json:"email"`

	// Name is the mutable display name.
	Name string `json:"name"`

	// Avatar is the storage key of the uploaded avatar, empty when none is set.
	Avatar string `json:"avatar,omitempty"`

	// Online reports whether the user currently has at least one live
	// connection or an active login session.
	Online bool `json:"online"`

	// PasswordHash is the bcrypt hash of the user's password. It never leaves
	// the server.
	PasswordHash string `json:"-"`
}

// Message is a single persisted chat message. Messages are immutable once
// created and are retained indefinitely.
type Message struct {
	ID        int64     `json:"id"`
	SenderID  int64     `json:"sender_id"`
	Room      string    `json:"room"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
