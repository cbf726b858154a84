package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventGroupCreated        EventType = "group_created"
	EventGroupUpdated        EventType = "group_updated"
	EventGroupArchived       EventType = "group_archived"
	EventGroupUnarchived     EventType = "group_unarchived"
	EventGroupDeleted        EventType = "group_deleted"
	EventMembersInvited      EventType = "members_invited"
	EventMembersRemoved      EventType = "members_removed"
	EventMembersUpdated      EventType = "members_updated"
	EventInvitationResponded EventType = "invitation_responded"
)

// GroupEvent is pushed to every websocket client subscribed to GroupID.
type GroupEvent struct {
	Type       EventType `json:"type"`
	GroupID    uuid.UUID `json:"group_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewGroupEvent(t EventType, groupID, actorID uuid.UUID, data any) GroupEvent {
	return GroupEvent{
		Type:       t,
		GroupID:    groupID,
		ActorID:    actorID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}
