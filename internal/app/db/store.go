/*
Package db implements the persistence store on PostgreSQL.

The Store satisfies the chat.Store contract. All serialization happens inside
the connection pool; concurrent callers never coordinate locking themselves.
*/
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boltchat/internal/app/chat"
	"boltchat/internal/app/user"
)

// Store is the PostgreSQL-backed persistence store.
type Store struct {
	pool *pgxpool.Pool
}

var _ chat.Store = (*Store)(nil)

// NewStore wraps a connection pool in a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateUser inserts a new account. The caller normalizes the email to
// lowercase beforehand; the unique index surfaces duplicates, which callers
// classify via IsUniqueViolation.
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*user.User, error) {
	const q = `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password_hash, avatar, online`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, q, email, name, passwordHash).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Avatar, &u.Online)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// UserByEmail looks up an account by its normalized email. Returns (nil, nil)
// when no such account exists.
func (s *Store) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	const q = `
		SELECT id, email, name, password_hash, avatar, online
		FROM users
		WHERE email = $1`

	return s.scanUser(s.pool.QueryRow(ctx, q, email))
}

// UserByID looks up an account by id. Returns (nil, nil) when no such
// account exists.
func (s *Store) UserByID(ctx context.Context, id int64) (*user.User, error) {
	const q = `
		SELECT id, email, name, password_hash, avatar, online
		FROM users
		WHERE id = $1`

	return s.scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Avatar, &u.Online)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return u, nil
}

// ListUsers returns every account.
func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	const q = `SELECT id, email, name, password_hash, avatar, online FROM users`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Avatar, &u.Online); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users rows: %w", err)
	}

	return users, nil
}

// SetOnline flips the stored online flag. Idempotent; flipping to the current
// value is a no-op.
func (s *Store) SetOnline(ctx context.Context, id int64, online bool) error {
	const q = `UPDATE users SET online = $2 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, q, id, online); err != nil {
		return fmt.Errorf("set online: %w", err)
	}

	return nil
}

// UpdateProfile mutates the display name and avatar key.
func (s *Store) UpdateProfile(ctx context.Context, id int64, name, avatar string) (*user.User, error) {
	const q = `
		UPDATE users
		SET name = $2, avatar = $3
		WHERE id = $1
		RETURNING id, email, name, password_hash, avatar, online`

	return s.scanUser(s.pool.QueryRow(ctx, q, id, name, avatar))
}

// CreateMessage inserts one message, assigning its id and UTC timestamp.
func (s *Store) CreateMessage(ctx context.Context, senderID int64, room, content string) (*user.Message, error) {
	const q = `
		INSERT INTO messages (sender_id, room, content)
		VALUES ($1, $2, $3)
		RETURNING id, sender_id, room, content, created_at`

	m := &user.Message{}
	err := s.pool.QueryRow(ctx, q, senderID, room, content).
		Scan(&m.ID, &m.SenderID, &m.Room, &m.Content, &m.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	m.Timestamp = m.Timestamp.UTC()
	return m, nil
}

// RoomHistory returns the most recent limit messages of a room in ascending
// timestamp order, each joined with the sender's current name and avatar.
func (s *Store) RoomHistory(ctx context.Context, room string, limit int) ([]chat.HistoryEntry, error) {
	if limit <= 0 || limit > chat.DefaultHistoryLimit {
		limit = chat.DefaultHistoryLimit
	}

	const q = `
		SELECT id, sender_id, sender_name, sender_avatar, room, content, created_at
		FROM (
			SELECT m.id, m.sender_id, u.name AS sender_name, u.avatar AS sender_avatar,
			       m.room, m.content, m.created_at
			FROM messages m
			JOIN users u ON u.id = m.sender_id
			WHERE m.room = $1
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, q, room, limit)
	if err != nil {
		return nil, fmt.Errorf("room history: %w", err)
	}
	defer rows.Close()

	entries := make([]chat.HistoryEntry, 0, limit)
	for rows.Next() {
		var e chat.HistoryEntry
		if err := rows.Scan(&e.ID, &e.SenderID, &e.SenderName, &e.SenderAvatar, &e.Room, &e.Content, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("room history rows: %w", err)
	}

	return entries, nil
}
