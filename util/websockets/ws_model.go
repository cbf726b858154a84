package websockets

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types
const (
	MsgTypeSubscribe    = "subscribe"
	MsgTypeUnsubscribe  = "unsubscribe"
	MsgTypeSubscribed   = "subscribed"
	MsgTypeUnsubscribed = "unsubscribed"
	MsgTypeError        = "error"
)

// writeWait bounds how long one slow client can hold up delivery.
const writeWait = 10 * time.Second

// Authorizer decides whether userID may follow groupID's events.
type Authorizer func(ctx context.Context, userID, groupID uuid.UUID) error

// Client represents a connected WebSocket user
type Client struct {
	Conn   *websocket.Conn
	UserID uuid.UUID
	groups map[uuid.UUID]bool
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

func (c *Client) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, payload)
}

type WebSocketManager struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan groupMessage
	register   chan *Client
	unregister chan *websocket.Conn
	done       chan struct{}
	authorize  Authorizer
	mu         sync.Mutex
}

// groupMessage is an encoded event addressed to a group's subscribers.
type groupMessage struct {
	GroupID   uuid.UUID
	Payload   []byte
	revoke    []uuid.UUID
	revokeAll bool
}

// Message struct for incoming WebSocket messages
type Message struct {
	Type    string `json:"type"`
	GroupID string `json:"group_id"`
}

// Reply acknowledges or rejects an incoming message.
type Reply struct {
	Type    string `json:"type"`
	GroupID string `json:"group_id,omitempty"`
	Message string `json:"message,omitempty"`
}
