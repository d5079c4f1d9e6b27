/*
Package randx generates random identifiers for stored objects.

Avatar files are stored under unguessable keys so one user cannot enumerate
another's uploads.
*/
package randx

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// avatarPrefix is the object key prefix for all avatar uploads.
const avatarPrefix = "avatars"

// allowedAvatarExts lists the accepted avatar file extensions.
var allowedAvatarExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
}

// AvatarKey builds a storage key for an avatar upload from the user id and
// the original file name's extension.
func AvatarKey(userID int64, filename string) (string, error) {
	ext, ok := avatarExt(filename)
	if !ok {
		return "", fmt.Errorf("disallowed avatar file extension in %q", filename)
	}

	return fmt.Sprintf("%s/%d_%s.%s", avatarPrefix, userID, uuid.New().String(), ext), nil
}

// IsAllowedAvatarFile reports whether the file name carries an accepted
// image extension.
func IsAllowedAvatarFile(filename string) bool {
	_, ok := avatarExt(filename)
	return ok
}

// IsAvatarKey reports whether a storage key belongs to the avatar namespace.
// Profile updates may only reference keys under it.
func IsAvatarKey(key string) bool {
	return strings.HasPrefix(key, avatarPrefix+"/") && !strings.Contains(key, "..")
}

func avatarExt(filename string) (string, bool) {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return "", false
	}

	ext := strings.ToLower(filename[idx+1:])
	_, ok := allowedAvatarExts[ext]
	return ext, ok
}
