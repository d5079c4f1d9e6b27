package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"boltchat/internal/pkg/auth/jwt"
	"boltchat/internal/pkg/errs"
)

func TestHandleRegister(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	deps := newTestDeps(store)

	code, envelope := doJSON(t, HandleRegister(deps),
		`{"name":"Alice","email":"Alice@Example.com","password":"hunter22"}`, nil)
	req.Equal(http.StatusOK, code)
	req.Equal(0, envelope.Code)

	data := envelope.Data.(map[string]any)
	req.NotEmpty(data["token"])

	// The token is a valid session for the new account.
	payload, err := jwt.ParseToken(data["token"].(string), deps.Config.JWTSecret)
	req.NoError(err)
	req.Equal("Alice", payload.Name)

	u := data["user"].(map[string]any)
	req.Equal("Alice", u["name"])
	req.Equal("alice@example.com", u["email"])
	req.Equal("/static/default-avatar.png", u["avatar"])
	req.Equal(true, u["online"])

	// Registration marks the account online.
	stored, err := store.UserByEmail(context.Background(), "alice@example.com")
	req.NoError(err)
	req.True(stored.Online)
}

func TestHandleRegisterValidation(t *testing.T) {
	store := newFakeStore()
	deps := newTestDeps(store)
	h := HandleRegister(deps)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"empty name", `{"name":"  ","email":"a@b.com","password":"hunter22"}`, errs.ErrInvalidName},
		{"bad email", `{"name":"Alice","email":"not-an-email","password":"hunter22"}`, errs.ErrInvalidEmail},
		{"short password", `{"name":"Alice","email":"a@b.com","password":"abc"}`, errs.ErrInvalidPassword},
		{"unknown field", `{"name":"Alice","email":"a@b.com","password":"hunter22","admin":true}`, errs.ErrInvalidJSONFormat},
		{"malformed json", `{"name":`, errs.ErrInvalidJSONFormat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, envelope := doJSON(t, h, tc.body, nil)
			require.Equal(t, tc.code, envelope.Code)
		})
	}
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	store.seedUser(t, "alice@example.com", "Alice", "hunter22")
	deps := newTestDeps(store)

	_, envelope := doJSON(t, HandleRegister(deps),
		`{"name":"Other Alice","email":"ALICE@example.com","password":"hunter22"}`, nil)
	req.Equal(errs.ErrEmailAlreadyExists, envelope.Code)
}

func TestHandleLogin(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	alice := store.seedUser(t, "alice@example.com", "Alice", "hunter22")
	deps := newTestDeps(store)
	h := HandleLogin(deps)

	code, envelope := doJSON(t, h, `{"email":"Alice@Example.com","password":"hunter22"}`, nil)
	req.Equal(http.StatusOK, code)
	req.Equal(0, envelope.Code)

	data := envelope.Data.(map[string]any)
	payload, err := jwt.ParseToken(data["token"].(string), deps.Config.JWTSecret)
	req.NoError(err)
	req.Equal(alice.ID, payload.UserID)

	stored, err := store.UserByID(context.Background(), alice.ID)
	req.NoError(err)
	req.True(stored.Online)
}

func TestHandleLoginBadCredentials(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	store.seedUser(t, "alice@example.com", "Alice", "hunter22")
	deps := newTestDeps(store)
	h := HandleLogin(deps)

	// Wrong password and unknown email produce the same error.
	_, envelope := doJSON(t, h, `{"email":"alice@example.com","password":"wrong"}`, nil)
	req.Equal(errs.ErrInvalidCredentials, envelope.Code)

	_, envelope = doJSON(t, h, `{"email":"nobody@example.com","password":"hunter22"}`, nil)
	req.Equal(errs.ErrInvalidCredentials, envelope.Code)
}

func TestHandleLogout(t *testing.T) {
	req := require.New(t)

	store := newFakeStore()
	alice := store.seedUser(t, "alice@example.com", "Alice", "hunter22")
	require.NoError(t, store.SetOnline(context.Background(), alice.ID, true))
	deps := newTestDeps(store)
	h := HandleLogout(deps)

	// Anonymous logout is rejected.
	code, envelope := doJSON(t, h, `{}`, nil)
	req.Equal(http.StatusUnauthorized, code)
	req.Equal(errs.ErrUnauthorized, envelope.Code)

	_, envelope = doJSON(t, h, `{}`, &jwt.Payload{UserID: alice.ID, Name: alice.Name})
	req.Equal(0, envelope.Code)

	stored, err := store.UserByID(context.Background(), alice.ID)
	req.NoError(err)
	req.False(stored.Online)
}
