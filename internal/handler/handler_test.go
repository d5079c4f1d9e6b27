package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"boltchat/internal/app/chat"
	"boltchat/internal/app/user"
	"boltchat/internal/configs"
	"boltchat/internal/pkg/auth/jwt"
	"boltchat/internal/pkg/resp"
)

// fakeStore is an in-memory chat.Store for handler tests.
type fakeStore struct {
	mu       sync.Mutex
	users    map[int64]user.User
	messages []user.Message
	nextUser int64
	nextMsg  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]user.User),
		nextUser: 1,
		nextMsg:  1,
	}
}

// seedUser registers an account with a bcrypt-hashed password.
func (f *fakeStore) seedUser(t *testing.T, email, name, password string) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := f.CreateUser(context.Background(), email, name, string(hash))
	require.NoError(t, err)
	return u
}

func (f *fakeStore) CreateUser(ctx context.Context, email, name, passwordHash string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return nil, errors.New("duplicate email")
		}
	}

	u := user.User{ID: f.nextUser, Email: email, Name: name, PasswordHash: passwordHash}
	f.nextUser++
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeStore) UserByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UserByID(ctx context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	out := u
	return &out, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) SetOnline(ctx context.Context, id int64, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil
	}
	u.Online = online
	f.users[id] = u
	return nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id int64, name, avatar string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	u.Name = name
	u.Avatar = avatar
	f.users[id] = u
	out := u
	return &out, nil
}

func (f *fakeStore) CreateMessage(ctx context.Context, senderID int64, room, content string) (*user.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg := user.Message{
		ID:        f.nextMsg,
		SenderID:  senderID,
		Room:      room,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	f.nextMsg++
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeStore) RoomHistory(ctx context.Context, room string, limit int) ([]chat.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit <= 0 || limit > chat.DefaultHistoryLimit {
		limit = chat.DefaultHistoryLimit
	}

	var rows []chat.HistoryEntry
	for _, msg := range f.messages {
		if msg.Room != room {
			continue
		}
		sender := f.users[msg.SenderID]
		rows = append(rows, chat.HistoryEntry{
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

// newTestDeps wires an AppDeps around a fakeStore with development-style
// config. Storage stays nil; tests that need it provide their own.
func newTestDeps(store *fakeStore) *AppDeps {
	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment:      "development",
			JWTSecret:        "test-secret",
			AssetBaseURL:     "https://cdn.example.com",
			DefaultAvatarURL: "/static/default-avatar.png",
		},
		Store: store,
	}
	deps.Manager = chat.NewManager(store, deps.AvatarURL)
	return deps
}

// doJSON posts a JSON body to the handler and decodes the response envelope.
func doJSON(t *testing.T, h http.HandlerFunc, body string, identity *jwt.Payload) (int, resp.JSONResponse) {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if identity != nil {
		r = r.WithContext(context.WithValue(r.Context(), jwt.ContextAuthPayloadKey, identity))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var envelope resp.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w.Code, envelope
}

// doGet issues a GET to the handler and decodes the response envelope.
func doGet(t *testing.T, h http.HandlerFunc, target string, identity *jwt.Payload) (int, resp.JSONResponse) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, target, nil)
	if identity != nil {
		r = r.WithContext(context.WithValue(r.Context(), jwt.ContextAuthPayloadKey, identity))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var envelope resp.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w.Code, envelope
}
