/*
Package chat contains the real-time messaging core: room membership, presence
tracking, message routing, and the per-connection client lifecycle.

This file defines the room identifier scheme. Rooms are not stored entities;
an identifier is either the literal global room token or a deterministic
pairwise identifier derived from two user ids.
*/
package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// GlobalRoom is the identifier of the single public room every connection
// joins on registration.
const GlobalRoom = "global"

// privateRoomPrefix prefixes every pairwise room identifier.
const privateRoomPrefix = "private_"

// PrivateRoom derives the pairwise room identifier for two user ids.
// The lower id always comes first, so both participants derive the same
// string regardless of who initiates: PrivateRoom(a, b) == PrivateRoom(b, a).
func PrivateRoom(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s%d_%d", privateRoomPrefix, a, b)
}

// ParsePrivateRoom extracts the two participant ids from a private room
// identifier. It reports false when the identifier is not a well-formed
// pairwise identifier.
func ParsePrivateRoom(room string) (int64, int64, bool) {
	raw, ok := strings.CutPrefix(room, privateRoomPrefix)
	if !ok {
		return 0, 0, false
	}

	lowStr, highStr, ok := strings.Cut(raw, "_")
	if !ok {
		return 0, 0, false
	}

	low, err := strconv.ParseInt(lowStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}

	high, err := strconv.ParseInt(highStr, 10, 64)
	if err != nil {
		return 0, 0, false
	}

	if low >= high {
		return 0, 0, false
	}

	return low, high, true
}

// ValidRoom reports whether the identifier names the global room or a
// well-formed private room.
func ValidRoom(room string) bool {
	if room == GlobalRoom {
		return true
	}
	_, _, ok := ParsePrivateRoom(room)
	return ok
}
