package websockets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
)

func newTestServer(t *testing.T, authorize Authorizer, userID uuid.UUID) (*WebSocketManager, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	manager := NewWebSocketManager(authorize)
	go manager.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID != uuid.Nil {
			r = r.WithContext(util.WithUserID(r.Context(), userID))
		}
		manager.HandleConnections(w, r)
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return manager, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, target any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(target); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestSubscribeAndReceive(t *testing.T) {
	userID := uuid.New()
	allowed := uuid.New()
	other := uuid.New()

	authorize := func(_ context.Context, u, g uuid.UUID) error {
		if u == userID && g == allowed {
			return nil
		}
		return apperror.Forbidden("You are not a member of this group.")
	}
	manager, url := newTestServer(t, authorize, userID)
	conn := dial(t, url)

	if err := conn.WriteJSON(Message{Type: MsgTypeSubscribe, GroupID: allowed.String()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ack Reply
	readJSON(t, conn, &ack)
	if ack.Type != MsgTypeSubscribed || ack.GroupID != allowed.String() {
		t.Fatalf("ack = %+v", ack)
	}
	if n := manager.Subscribers(allowed); n != 1 {
		t.Fatalf("subscribers = %d", n)
	}

	manager.Publish(model.NewGroupEvent(model.EventGroupUpdated, other, uuid.New(), nil))
	manager.Publish(model.NewGroupEvent(model.EventMembersInvited, allowed, uuid.New(), map[string]int{"invited": 2}))

	var event struct {
		Type    model.EventType `json:"type"`
		GroupID uuid.UUID       `json:"group_id"`
		Data    json.RawMessage `json:"data"`
	}
	readJSON(t, conn, &event)
	if event.Type != model.EventMembersInvited || event.GroupID != allowed {
		t.Fatalf("event = %+v", event)
	}
}

func TestSubscribeDenied(t *testing.T) {
	authorize := func(context.Context, uuid.UUID, uuid.UUID) error {
		return apperror.Forbidden("You are not a member of this group.")
	}
	manager, url := newTestServer(t, authorize, uuid.New())
	conn := dial(t, url)

	groupID := uuid.New()
	if err := conn.WriteJSON(Message{Type: MsgTypeSubscribe, GroupID: groupID.String()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply Reply
	readJSON(t, conn, &reply)
	if reply.Type != MsgTypeError || reply.Message != "You are not a member of this group." {
		t.Fatalf("reply = %+v", reply)
	}
	if n := manager.Subscribers(groupID); n != 0 {
		t.Fatalf("subscribers = %d", n)
	}
}

func TestInvalidMessages(t *testing.T) {
	allow := func(context.Context, uuid.UUID, uuid.UUID) error { return nil }
	_, url := newTestServer(t, allow, uuid.New())
	conn := dial(t, url)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"not json", "{", "Invalid message."},
		{"bad group id", `{"type":"subscribe","group_id":"nope"}`, "Invalid group id."},
		{"unknown type", `{"type":"dance"}`, "Unknown message type."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("write: %v", err)
			}
			var reply Reply
			readJSON(t, conn, &reply)
			if reply.Type != MsgTypeError || reply.Message != tt.want {
				t.Fatalf("reply = %+v", reply)
			}
		})
	}
}

func TestUnsubscribe(t *testing.T) {
	allow := func(context.Context, uuid.UUID, uuid.UUID) error { return nil }
	manager, url := newTestServer(t, allow, uuid.New())
	conn := dial(t, url)
	groupID := uuid.New()

	var reply Reply
	_ = conn.WriteJSON(Message{Type: MsgTypeSubscribe, GroupID: groupID.String()})
	readJSON(t, conn, &reply)
	_ = conn.WriteJSON(Message{Type: MsgTypeUnsubscribe, GroupID: groupID.String()})
	readJSON(t, conn, &reply)

	if reply.Type != MsgTypeUnsubscribed {
		t.Fatalf("reply = %+v", reply)
	}
	if n := manager.Subscribers(groupID); n != 0 {
		t.Fatalf("subscribers = %d", n)
	}
}

func TestHandleConnectionsRequiresUser(t *testing.T) {
	allow := func(context.Context, uuid.UUID, uuid.UUID) error { return nil }
	_, url := newTestServer(t, allow, uuid.Nil)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response = %v", resp)
	}
}

func TestPublishDoesNotBlockWithoutRun(t *testing.T) {
	manager := NewWebSocketManager(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			manager.Publish(model.NewGroupEvent(model.EventGroupDeleted, uuid.New(), uuid.New(), nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}

func subscribe(t *testing.T, conn *websocket.Conn, groupID uuid.UUID) {
	t.Helper()
	if err := conn.WriteJSON(Message{Type: MsgTypeSubscribe, GroupID: groupID.String()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ack Reply
	readJSON(t, conn, &ack)
	if ack.Type != MsgTypeSubscribed {
		t.Fatalf("ack = %+v", ack)
	}
}

func waitForSubscribers(t *testing.T, manager *WebSocketManager, groupID uuid.UUID, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for manager.Subscribers(groupID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", manager.Subscribers(groupID), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMembershipEventsRevokeSubscriptions(t *testing.T) {
	userID := uuid.New()
	groupID := uuid.New()
	other := uuid.New()
	archivedAt := time.Now()

	tests := []struct {
		name      string
		eventType model.EventType
		data      any
		want      int
	}{
		{
			name:      "subscriber removed",
			eventType: model.EventMembersRemoved,
			data:      []model.GroupMember{{GroupID: groupID, UserID: &userID, Status: model.StatusApproved}},
			want:      0,
		},
		{
			name:      "group deleted",
			eventType: model.EventGroupDeleted,
			data:      model.Group{ID: groupID},
			want:      0,
		},
		{
			name:      "subscriber archived",
			eventType: model.EventMembersUpdated,
			data:      []model.GroupMember{{GroupID: groupID, UserID: &userID, Status: model.StatusApproved, DeletedAt: &archivedAt}},
			want:      0,
		},
		{
			name:      "subscriber share changed",
			eventType: model.EventMembersUpdated,
			data:      []model.GroupMember{{GroupID: groupID, UserID: &userID, Status: model.StatusApproved}},
			want:      1,
		},
		{
			name:      "someone else removed",
			eventType: model.EventMembersRemoved,
			data:      []model.GroupMember{{GroupID: groupID, UserID: &other, Status: model.StatusApproved}},
			want:      1,
		},
	}

	allow := func(context.Context, uuid.UUID, uuid.UUID) error { return nil }
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, url := newTestServer(t, allow, userID)
			conn := dial(t, url)
			subscribe(t, conn, groupID)

			manager.Publish(model.NewGroupEvent(tt.eventType, groupID, uuid.New(), tt.data))

			// the event itself still reaches the subscriber
			var event struct {
				Type model.EventType `json:"type"`
			}
			readJSON(t, conn, &event)
			if event.Type != tt.eventType {
				t.Fatalf("event = %+v", event)
			}

			waitForSubscribers(t, manager, groupID, tt.want)
		})
	}
}

func TestRevokedSubscriberReceivesNothingMore(t *testing.T) {
	userID := uuid.New()
	groupID := uuid.New()
	allow := func(context.Context, uuid.UUID, uuid.UUID) error { return nil }
	manager, url := newTestServer(t, allow, userID)
	conn := dial(t, url)
	subscribe(t, conn, groupID)

	removed := []model.GroupMember{{GroupID: groupID, UserID: &userID}}
	manager.Publish(model.NewGroupEvent(model.EventMembersRemoved, groupID, uuid.New(), removed))

	var event map[string]any
	readJSON(t, conn, &event)
	waitForSubscribers(t, manager, groupID, 0)

	manager.Publish(model.NewGroupEvent(model.EventGroupUpdated, groupID, uuid.New(), nil))

	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, msg, err := conn.ReadMessage(); err == nil {
		t.Fatalf("unexpected message after removal: %s", msg)
	}
}
