/*
Package chat contains the real-time messaging core.

This file defines the Client struct, representing one authenticated WebSocket
connection. It owns the read and write pumps and translates inbound frames
into calls on the Roster and Router.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"boltchat/internal/app/user"
	"boltchat/internal/pkg/errs"
	"boltchat/internal/pkg/logx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192

	// per-connection outbound queue depth.
	sendQueueSize = 256
)

// Client is one live connection bound to exactly one authenticated user.
type Client struct {
	manager *Manager

	// underlying WebSocket connection.
	conn *websocket.Conn

	// the authenticated account this connection belongs to.
	user user.User

	// send queues frames waiting to be written to the connection.
	send chan []byte

	// done is closed exactly once when the connection is torn down. The
	// write pump exits on it, and enqueue refuses frames after it.
	done      chan struct{}
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(manager *Manager, conn *websocket.Conn, u user.User) *Client {
	clientLogger := logx.Logger().With().
		Int64("user_id", u.ID).
		Logger()

	return &Client{
		manager: manager,
		conn:    conn,
		user:    u,
		send:    make(chan []byte, sendQueueSize),
		done:    make(chan struct{}),
		logger:  clientLogger,
	}
}

// User returns the account bound to this connection.
func (c *Client) User() user.User {
	return c.user
}

// enqueue queues a frame for delivery. It never blocks: a full queue or a
// closed connection drops the frame and reports false.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// shutdown closes the done channel and the underlying connection. Safe to
// call any number of times from any goroutine.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			if err := c.conn.Close(); err != nil {
				c.logger.Debug().Err(err).Msg("Connection close error during shutdown.")
			}
		}
	})
}

// ReadPump reads frames from the connection until it fails or closes, then
// unregisters the client from the gateway. Must run on the connection's
// serving goroutine.
func (c *Client) ReadPump() {
	defer c.manager.Unregister(c)

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline.")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected connection close.")
			}
			return
		}

		c.processInbound(frame)
	}
}

// processInbound dispatches one raw inbound frame.
func (c *Client) processInbound(frame []byte) {
	var ev Event
	if err := json.Unmarshal(frame, &ev); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON.")
		return
	}

	switch ev.Type {
	case TypeJoinRoom:
		c.handleJoin(ev.Payload)

	case TypeLeaveRoom:
		c.handleLeave(ev.Payload)

	case TypeSendMessage:
		c.handleSend(ev.Payload)

	default:
		c.logger.Warn().Str("event_type", string(ev.Type)).Msg("Client sent unsupported event type.")
	}
}

func (c *Client) handleJoin(payload json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid join_room payload.")
		return
	}

	if p.Room == "" {
		return
	}

	c.manager.Roster().Join(c, p.Room)
}

func (c *Client) handleLeave(payload json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid leave_room payload.")
		return
	}

	c.manager.Roster().Leave(c, p.Room)
}

func (c *Client) handleSend(payload json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid send_message payload.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.manager.Router().Send(ctx, &c.user, p.Room, p.Content); err != nil {
		c.SendError(err)
	}
}

// SendError pushes an error event to this connection. Rejected actions fail
// loudly rather than as silent no-ops.
func (c *Client) SendError(err error) {
	code := errs.ErrUnknown
	message := "Something went wrong."

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	}

	frame, mErr := MarshalEvent(TypeError, ErrorPayload{Code: code, Message: message})
	if mErr != nil {
		c.logger.Error().Err(mErr).Msg("Failed to marshal error frame.")
		return
	}

	if !c.enqueue(frame) {
		c.logger.Warn().Msg("Send queue full, error frame dropped.")
	}
}

// WritePump drains the send queue onto the connection and keeps the
// heartbeat alive. It exits when the client shuts down or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline.")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Info().Err(err).Msg("Write failed, closing connection.")
				return
			}

		case <-c.done:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.SetWriteDeadline(deadline); err == nil {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			}
			return

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping.")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Info().Err(err).Msg("Ping failed, closing connection.")
				return
			}
		}
	}
}
