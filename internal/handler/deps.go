package handler

import (
	"context"
	"fmt"
	"time"

	"boltchat/internal/app/chat"
	"boltchat/internal/app/storage"
	"boltchat/internal/configs"
)

// AppDeps bundles the collaborators the HTTP handlers need. All of them are
// constructed once at process start and injected here.
type AppDeps struct {
	Manager *chat.Manager
	Config  *configs.AppConfig
	Storage storage.Service
	Store   chat.Store
}

// AvatarURL resolves a stored avatar key to the URL clients render. An empty
// key resolves to the default avatar.
func (d *AppDeps) AvatarURL(key string) string {
	if key == "" {
		return d.Config.DefaultAvatarURL
	}
	return fmt.Sprintf("%s/%s", d.Config.AssetBaseURL, key)
}

// contextWithCleanupTimeout scopes background storage cleanup work that
// outlives the originating request.
func contextWithCleanupTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
