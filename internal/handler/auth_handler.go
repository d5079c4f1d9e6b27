/*
Package handler provides the HTTP handlers and routing setup for the BoltChat server.

This file implements registration, login, and logout.
*/
package handler

import (
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"boltchat/internal/app/db"
	"boltchat/internal/pkg/auth/jwt"
	"boltchat/internal/pkg/errs"
	"boltchat/internal/pkg/logx"
	"boltchat/internal/pkg/req"
	"boltchat/internal/pkg/resp"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 50
	maxNameLen     = 100
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account, marks it online, and issues a
// session token.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		name := strings.TrimSpace(input.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		if !emailRegex.MatchString(email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < minPasswordLen || passwordLen > maxPasswordLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword, minPasswordLen, maxPasswordLen))
			return
		}

		if existing, err := deps.Store.UserByEmail(r.Context(), email); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		} else if existing != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmailAlreadyExists))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		u, err := deps.Store.CreateUser(r.Context(), email, name, string(hashedPassword))
		if err != nil {
			// The pre-check races with concurrent registrations; the unique
			// index is the authority.
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: email already exists", "email", email)
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		if err := deps.Manager.Presence().MarkOnline(r.Context(), u.ID); err != nil {
			logx.Error(err, "register: failed to mark user online", "user_id", u.ID)
		}

		respondSession(w, r, deps, u.ID, u.Name, u.Avatar, u.Email)
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials, marks the user online, and issues a
// session token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))

		u, err := deps.Store.UserByEmail(r.Context(), email)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		if u == nil {
			logx.Warn("login: unknown email", "email", email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "user_id", u.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Manager.Presence().MarkOnline(r.Context(), u.ID); err != nil {
			logx.Error(err, "login: failed to mark user online", "user_id", u.ID)
		}

		respondSession(w, r, deps, u.ID, u.Name, u.Avatar, u.Email)
	}
}

// HandleLogout marks the authenticated user offline.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if err := deps.Manager.Presence().MarkOffline(r.Context(), identity.UserID); err != nil {
			logx.Error(err, "logout: failed to mark user offline", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// respondSession issues a fresh token and returns it with the user payload.
func respondSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, id int64, name, avatar, email string) {
	payload := &jwt.Payload{
		UserID: id,
		Name:   name,
		Avatar: avatar,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		logx.Error(err, "session token generation failed", "user_id", id)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	resp.RespondSuccess(w, r, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":     id,
			"name":   name,
			"email":  email,
			"avatar": deps.AvatarURL(avatar),
			"online": true,
		},
	})
}
