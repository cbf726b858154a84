package websockets

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
)

const broadcastBuffer = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewWebSocketManager initializes a WebSocketManager. authorize gates every
// subscribe request.
func NewWebSocketManager(authorize Authorizer) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan groupMessage, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		authorize:  authorize,
	}
}

// Run delivers published events until ctx is cancelled, then closes every
// connection.
func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.done)

	for {
		select {
		case <-ctx.Done():
			manager.mu.Lock()
			for conn := range manager.clients {
				conn.Close()
				delete(manager.clients, conn)
			}
			manager.mu.Unlock()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.Conn] = client
			manager.mu.Unlock()

		case conn := <-manager.unregister:
			manager.mu.Lock()
			if client, exists := manager.clients[conn]; exists {
				delete(manager.clients, conn)
				conn.Close()
				util.Logger.WithFields(logrus.Fields{"user_id": client.UserID}).Debug("websocket client disconnected")
			}
			manager.mu.Unlock()

		case message := <-manager.broadcast:
			manager.deliver(message)
		}
	}
}

// deliver writes message to the group's subscribers without holding the
// manager lock, then drops failed connections and revoked subscriptions.
func (manager *WebSocketManager) deliver(message groupMessage) {
	manager.mu.Lock()
	var targets []*Client
	for _, client := range manager.clients {
		if client.groups[message.GroupID] {
			targets = append(targets, client)
		}
	}
	manager.mu.Unlock()

	var failed []*Client
	for _, client := range targets {
		if err := client.write(message.Payload); err != nil {
			failed = append(failed, client)
		}
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	for _, client := range failed {
		client.Conn.Close()
		delete(manager.clients, client.Conn)
	}
	for _, client := range targets {
		if message.revokeAll || slices.Contains(message.revoke, client.UserID) {
			delete(client.groups, message.GroupID)
		}
	}
}

// revocations lists the accounts that stop following event.GroupID once the
// event is delivered. all is set when every subscription to the group ends.
func revocations(event model.GroupEvent) (users []uuid.UUID, all bool) {
	switch event.Type {
	case model.EventGroupDeleted:
		return nil, true
	case model.EventMembersRemoved, model.EventMembersUpdated:
		members, ok := event.Data.([]model.GroupMember)
		if !ok {
			return nil, false
		}
		for _, m := range members {
			if m.UserID == nil {
				continue
			}
			if event.Type == model.EventMembersRemoved || m.DeletedAt != nil || m.Status != model.StatusApproved {
				users = append(users, *m.UserID)
			}
		}
	}
	return users, false
}

// Publish queues event for the group's subscribers. Events are dropped when
// the queue is full so callers never block on slow clients.
func (manager *WebSocketManager) Publish(event model.GroupEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err, "type": event.Type}).Error("encoding group event")
		return
	}

	message := groupMessage{GroupID: event.GroupID, Payload: payload}
	message.revoke, message.revokeAll = revocations(event)

	select {
	case manager.broadcast <- message:
	default:
		util.Logger.WithFields(logrus.Fields{"group_id": event.GroupID, "type": event.Type}).Warn("group event dropped")
	}
}

// Subscribers returns how many connected clients follow groupID.
func (manager *WebSocketManager) Subscribers(groupID uuid.UUID) int {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	n := 0
	for _, client := range manager.clients {
		if client.groups[groupID] {
			n++
		}
	}
	return n
}

func (manager *WebSocketManager) setSubscription(client *Client, groupID uuid.UUID, on bool) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if on {
		client.groups[groupID] = true
	} else {
		delete(client.groups, groupID)
	}
}

// HandleConnections upgrades HTTP requests to WebSocket connections. The
// request must carry an authenticated user id.
func (manager *WebSocketManager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err}).Warn("websocket upgrade failed")
		return
	}

	client := &Client{Conn: conn, UserID: userID, groups: make(map[uuid.UUID]bool)}
	select {
	case manager.register <- client:
	case <-manager.done:
		conn.Close()
		return
	}

	defer func() {
		select {
		case manager.unregister <- conn:
		case <-manager.done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			manager.reply(client, Reply{Type: MsgTypeError, Message: "Invalid message."})
			continue
		}

		switch message.Type {
		case MsgTypeSubscribe:
			manager.subscribe(r.Context(), client, message.GroupID)

		case MsgTypeUnsubscribe:
			groupID, err := uuid.Parse(message.GroupID)
			if err != nil {
				manager.reply(client, Reply{Type: MsgTypeError, GroupID: message.GroupID, Message: "Invalid group id."})
				continue
			}
			manager.setSubscription(client, groupID, false)
			manager.reply(client, Reply{Type: MsgTypeUnsubscribed, GroupID: groupID.String()})

		default:
			manager.reply(client, Reply{Type: MsgTypeError, Message: "Unknown message type."})
		}
	}
}

func (manager *WebSocketManager) subscribe(ctx context.Context, client *Client, rawGroupID string) {
	groupID, err := uuid.Parse(rawGroupID)
	if err != nil {
		manager.reply(client, Reply{Type: MsgTypeError, GroupID: rawGroupID, Message: "Invalid group id."})
		return
	}

	if err := manager.authorize(ctx, client.UserID, groupID); err != nil {
		manager.reply(client, Reply{
			Type:    MsgTypeError,
			GroupID: rawGroupID,
			Message: apperror.Message(err, "Unable to subscribe to this group."),
		})
		return
	}

	manager.setSubscription(client, groupID, true)
	manager.reply(client, Reply{Type: MsgTypeSubscribed, GroupID: groupID.String()})
}

func (manager *WebSocketManager) reply(client *Client, reply Reply) {
	payload, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := client.write(payload); err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err, "user_id": client.UserID}).Debug("websocket reply failed")
	}
}
