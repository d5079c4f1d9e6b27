/*
Package handler provides the HTTP handlers and routing setup for the BoltChat server.

This file implements the user roster query, profile updates, and the two
avatar upload paths (direct multipart and presigned URL).
*/
package handler

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"boltchat/internal/pkg/auth/jwt"
	"boltchat/internal/pkg/errs"
	"boltchat/internal/pkg/logx"
	"boltchat/internal/pkg/randx"
	"boltchat/internal/pkg/req"
	"boltchat/internal/pkg/resp"
)

// presignExpiry bounds how long a presigned avatar upload URL stays valid.
const presignExpiry = 10 * time.Minute

// HandleListUsers returns every user with their current presence, avatar
// keys resolved to URLs. Clients poll this and also receive pushed
// online_users events over the real-time channel.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		entries, err := deps.Manager.Presence().Snapshot(r.Context())
		if err != nil {
			logx.Error(err, "list users: snapshot failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		for i := range entries {
			entries[i].Avatar = deps.AvatarURL(entries[i].Avatar)
		}

		resp.RespondSuccess(w, r, map[string]any{"users": entries})
	}
}

type UpdateProfileInput struct {
	Name      string `json:"name"`
	AvatarKey string `json:"avatarKey,omitempty"`
}

// HandleUpdateProfile mutates the display name and avatar reference, then
// re-issues the session token so it reflects the new identity.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		name := strings.TrimSpace(input.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidName))
			return
		}

		if input.AvatarKey != "" && !randx.IsAvatarKey(input.AvatarKey) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		current, err := deps.Store.UserByID(r.Context(), identity.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}
		if current == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		avatarKey := input.AvatarKey
		if avatarKey == "" {
			avatarKey = current.Avatar
		}

		updated, err := deps.Store.UpdateProfile(r.Context(), identity.UserID, name, avatarKey)
		if err != nil || updated == nil {
			logx.Error(err, "profile update failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		// Replaced avatars are garbage; best-effort cleanup off the request path.
		if current.Avatar != "" && current.Avatar != updated.Avatar {
			go func(key string) {
				ctx, cancel := contextWithCleanupTimeout()
				defer cancel()
				_ = deps.Storage.Delete(ctx, key)
			}(current.Avatar)
		}

		respondSession(w, r, deps, updated.ID, updated.Name, updated.Avatar, updated.Email)
	}
}

// HandleUploadAvatar accepts a direct multipart avatar upload, stores the
// file under a fresh key, and binds it to the user's profile.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		defer file.Close()

		if !randx.IsAllowedAvatarFile(header.Filename) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAvatarType))
			return
		}

		key, err := randx.AvatarKey(identity.UserID, header.Filename)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAvatarType))
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		if err := deps.Storage.Upload(r.Context(), key, mimeType, file); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		current, err := deps.Store.UserByID(r.Context(), identity.UserID)
		if err != nil || current == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		updated, err := deps.Store.UpdateProfile(r.Context(), identity.UserID, current.Name, key)
		if err != nil || updated == nil {
			logx.Error(err, "avatar bind failed", "user_id", identity.UserID, "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		if current.Avatar != "" && current.Avatar != key {
			go func(old string) {
				ctx, cancel := contextWithCleanupTimeout()
				defer cancel()
				_ = deps.Storage.Delete(ctx, old)
			}(current.Avatar)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"avatarKey": key,
			"avatar":    deps.AvatarURL(key),
		})
	}
}

// HandlePresignAvatarDownload returns a presigned GET URL for a stored
// avatar, so deployments can keep the bucket private instead of serving
// avatars through public AssetBaseURL links.
func HandlePresignAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		key := r.URL.Query().Get("key")
		if !randx.IsAvatarKey(key) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		url, err := deps.Storage.PresignDownload(r.Context(), key, presignExpiry)
		if err != nil {
			logx.Error(err, "avatar download presign failed", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"downloadUrl": url,
			"avatarKey":   key,
		})
	}
}

type PresignAvatarInput struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatar returns a presigned PUT URL for a client-side avatar
// upload. The client binds the returned key via a subsequent profile update.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FileSize <= 0 || input.FileSize > req.MaxRequestFileSize {
			resp.RespondError(w, r, errs.NewError(errs.ErrRequestEntityTooLarge))
			return
		}

		key, err := randx.AvatarKey(identity.UserID, input.Filename)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAvatarType))
			return
		}

		url, err := deps.Storage.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, presignExpiry)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": url,
			"avatarKey": key,
		})
	}
}
