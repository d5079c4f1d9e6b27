/*
Package chat contains the real-time messaging core.

This file defines the wire events of the real-time channel. Three inbound
event kinds arrive from clients (join_room, leave_room, send_message); the
server pushes new_message, online_users, and error events.
*/
package chat

import (
	"encoding/json"
	"time"
)

// EventType names a wire event on the real-time channel.
type EventType string

const (
	// Inbound events.
	TypeJoinRoom    EventType = "join_room"
	TypeLeaveRoom   EventType = "leave_room"
	TypeSendMessage EventType = "send_message"

	// Outbound events.
	TypeNewMessage  EventType = "new_message"
	TypeOnlineUsers EventType = "online_users"
	TypeError       EventType = "error"
)

// Event is the envelope every frame on the channel uses.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RoomPayload carries the room identifier of join_room and leave_room events.
type RoomPayload struct {
	Room string `json:"room"`
}

// SendMessagePayload carries an inbound send_message event.
type SendMessagePayload struct {
	Room    string `json:"room"`
	Content string `json:"content"`
}

// NewMessagePayload is the delivery payload fanned out to every subscriber of
// the target room, the sender's own connection included.
type NewMessagePayload struct {
	SenderID     int64  `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	SenderAvatar string `json:"sender_avatar"`
	Room         string `json:"room"`
	Content      string `json:"content"`
	Timestamp    string `json:"timestamp"`
}

// ErrorPayload reports a rejected action back to the offending connection.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MarshalEvent builds a wire frame from an event type and payload.
func MarshalEvent(t EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: t, Payload: raw})
}

// formatTimestamp renders a message timestamp for the wire. All timestamps
// leave the server in UTC.
func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
