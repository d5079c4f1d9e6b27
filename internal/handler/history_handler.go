/*
Package handler provides the HTTP handlers and routing setup for the BoltChat server.

This file implements the room history query.
*/
package handler

import (
	"net/http"
	"strconv"

	"boltchat/internal/app/chat"
	"boltchat/internal/pkg/auth/jwt"
	"boltchat/internal/pkg/errs"
	"boltchat/internal/pkg/logx"
	"boltchat/internal/pkg/resp"
)

// HandleRoomHistory returns the most recent messages of a room in ascending
// timestamp order, bounded to chat.DefaultHistoryLimit entries.
func HandleRoomHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		room := r.URL.Query().Get("room")
		if room == "" {
			room = chat.GlobalRoom
		}

		if !chat.ValidRoom(room) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRoom))
			return
		}

		limit := chat.DefaultHistoryLimit
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			if parsed < limit {
				limit = parsed
			}
		}

		entries, err := deps.Store.RoomHistory(r.Context(), room, limit)
		if err != nil {
			logx.Error(err, "room history query failed", "room", room)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		for i := range entries {
			entries[i].SenderAvatar = deps.AvatarURL(entries[i].SenderAvatar)
		}

		resp.RespondSuccess(w, r, map[string]any{"messages": entries})
	}
}
