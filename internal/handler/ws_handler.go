/*
Package handler provides the HTTP handlers and routing setup for the BoltChat server.

This file upgrades authenticated HTTP requests to WebSocket connections and
hands them to the chat gateway. Unauthenticated upgrade attempts are rejected
with an explicit error rather than silently dropped.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"boltchat/internal/app/chat"
	"boltchat/internal/pkg/auth/jwt"
	"boltchat/internal/pkg/errs"
	"boltchat/internal/pkg/limiter"
	"boltchat/internal/pkg/logx"
	"boltchat/internal/pkg/resp"
)

// HandleWebSocket authenticates, rate limits, and upgrades a connection,
// then runs the client's read loop on the request goroutine.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		// Browsers cannot set headers on WebSocket requests, so the token
		// may arrive as a query parameter instead.
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			if token := r.URL.Query().Get("token"); token != "" {
				parsed, err := jwt.ParseToken(token, deps.Config.JWTSecret)
				if err == nil {
					identity = parsed
				}
			}
		}

		if identity == nil {
			logx.Warn("WebSocket connection rejected: unauthenticated.")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		// Fresh lookup so the connection carries current name/avatar, not
		// whatever the token was issued with.
		u, err := deps.Store.UserByID(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		if u == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Manager, conn, *u)

		go client.WritePump()

		deps.Manager.Register(r.Context(), client)

		logx.Info("WebSocket connection established", "user_id", u.ID)

		client.ReadPump()
	}
}
