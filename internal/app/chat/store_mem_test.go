package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"boltchat/internal/app/user"
)

// memStore is an in-memory Store used by the package tests. It serializes
// its own access the way the PostgreSQL store does, so tests can hit it from
// concurrent goroutines.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]user.User
	messages []user.Message
	nextUser int64
	nextMsg  int64

	// failCreateMessage forces CreateMessage to fail, for persistence
	// failure paths.
	failCreateMessage bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]user.User),
		nextUser: 1,
		nextMsg:  1,
	}
}

// addUser seeds an account directly, bypassing validation.
func (m *memStore) addUser(name string) *user.User {
	u, _ := m.CreateUser(context.Background(), strings.ToLower(name)+"@example.com", name, "hash")
	return u
}

func (m *memStore) CreateUser(ctx context.Context, email, name, passwordHash string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return nil, errors.New("duplicate email")
		}
	}

	u := user.User{
		ID:           m.nextUser,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
	}
	m.nextUser++
	m.users[u.ID] = u
	return &u, nil
}

func (m *memStore) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) UserByID(ctx context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	out := u
	return &out, nil
}

func (m *memStore) ListUsers(ctx context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SetOnline(ctx context.Context, id int64, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil
	}
	u.Online = online
	m.users[id] = u
	return nil
}

func (m *memStore) UpdateProfile(ctx context.Context, id int64, name, avatar string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.Name = name
	u.Avatar = avatar
	m.users[id] = u
	out := u
	return &out, nil
}

func (m *memStore) CreateMessage(ctx context.Context, senderID int64, room, content string) (*user.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreateMessage {
		return nil, errors.New("store unavailable")
	}

	msg := user.Message{
		ID:        m.nextMsg,
		SenderID:  senderID,
		Room:      room,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	m.nextMsg++
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memStore) RoomHistory(ctx context.Context, room string, limit int) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	var rows []HistoryEntry
	for _, msg := range m.messages {
		if msg.Room != room {
			continue
		}
		sender := m.users[msg.SenderID]
		rows = append(rows, HistoryEntry{
			ID:           msg.ID,
			SenderID:     msg.SenderID,
			SenderName:   sender.Name,
			SenderAvatar: sender.Avatar,
			Room:         msg.Room,
			Content:      msg.Content,
			Timestamp:    msg.Timestamp,
		})
	}

	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}
