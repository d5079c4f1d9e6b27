package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"boltchat/internal/pkg/errs"
)

func inboundFrame(t *testing.T, typ EventType, payload any) []byte {
	t.Helper()
	frame, err := MarshalEvent(typ, payload)
	require.NoError(t, err)
	return frame
}

func TestClientJoinAndLeaveEvents(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	alice := store.addUser("Alice")
	bob := store.addUser("Bob")
	m := NewManager(store, nil)

	c := newTestClient(m, alice)
	m.Register(ctx, c)

	room := PrivateRoom(alice.ID, bob.ID)
	c.processInbound(inboundFrame(t, TypeJoinRoom, RoomPayload{Room: room}))
	req.True(m.Roster().Contains(c, room))

	c.processInbound(inboundFrame(t, TypeLeaveRoom, RoomPayload{Room: room}))
	req.False(m.Roster().Contains(c, room))

	// Joining with an empty room identifier is ignored.
	c.processInbound(inboundFrame(t, TypeJoinRoom, RoomPayload{}))
	req.False(m.Roster().Contains(c, ""))
}

func TestClientSendMessageEvent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	alice := store.addUser("Alice")
	m := NewManager(store, nil)

	c := newTestClient(m, alice)
	m.Register(ctx, c)

	c.processInbound(inboundFrame(t, TypeSendMessage, SendMessagePayload{
		Room:    GlobalRoom,
		Content: "hello",
	}))

	frames := drainFrames(c)
	req.Len(frames, 2)

	var evt Event
	req.NoError(json.Unmarshal(frames[0], &evt))
	req.Equal(TypeNewMessage, evt.Type)

	rows, err := store.RoomHistory(ctx, GlobalRoom, 0)
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal("hello", rows[0].Content)
}

func TestClientSendFailureProducesErrorEvent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	alice := store.addUser("Alice")
	m := NewManager(store, nil)

	c := newTestClient(m, alice)
	m.Register(ctx, c)

	c.processInbound(inboundFrame(t, TypeSendMessage, SendMessagePayload{
		Room:    GlobalRoom,
		Content: "   ",
	}))

	frames := drainFrames(c)
	req.Len(frames, 1)

	var evt Event
	req.NoError(json.Unmarshal(frames[0], &evt))
	req.Equal(TypeError, evt.Type)

	var payload ErrorPayload
	req.NoError(json.Unmarshal(evt.Payload, &payload))
	req.Equal(errs.ErrEmptyMessage, payload.Code)
	req.NotEmpty(payload.Message)
}

func TestClientIgnoresMalformedFrames(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store := newMemStore()
	alice := store.addUser("Alice")
	m := NewManager(store, nil)

	c := newTestClient(m, alice)
	m.Register(ctx, c)

	c.processInbound([]byte("not json"))
	c.processInbound([]byte(`{"type":"unknown_event"}`))
	c.processInbound([]byte(fmt.Sprintf(`{"type":"%s","payload":"not an object"}`, TypeJoinRoom)))

	req.Empty(drainFrames(c))
	req.Equal(1, m.ClientCount())
}

func TestClientEnqueueAfterShutdown(t *testing.T) {
	req := require.New(t)

	store := newMemStore()
	alice := store.addUser("Alice")
	m := NewManager(store, nil)

	c := newTestClient(m, alice)
	req.True(c.enqueue([]byte("x")))

	c.shutdown()
	c.shutdown() // safe to repeat

	req.False(c.enqueue([]byte("x")))
}
