// Package service holds the group membership workflows. Every workflow checks
// the caller's role in the group before writing, and multi-row workflows run
// inside a single transaction.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
)

// MaxOwnedGroups is how many non-archived groups a user may own at once.
const MaxOwnedGroups = 5

// Store is the set of accessors the group workflows use. *store.Store
// satisfies it.
type Store interface {
	CreateGroup(ctx context.Context, q db.Querier, values model.CreateGroup) (model.Group, error)
	UpdateGroup(ctx context.Context, q db.Querier, id uuid.UUID, values model.UpdateGroup) (model.Group, error)
	SetGroupArchived(ctx context.Context, q db.Querier, id uuid.UUID, archived bool) (model.Group, error)
	DeleteGroup(ctx context.Context, q db.Querier, id uuid.UUID) (model.Group, error)
	CountUserOwnedGroups(ctx context.Context, q db.Querier, userID uuid.UUID) (int, error)

	CreateGroupMember(ctx context.Context, q db.Querier, values model.CreateGroupMember) (model.GroupMember, error)
	GetGroupMember(ctx context.Context, q db.Querier, lookup model.MemberLookup) (model.GroupMember, error)
	UpdateGroupMember(ctx context.Context, q db.Querier, id uuid.UUID, groupID *uuid.UUID, values model.UpdateGroupMember) (model.GroupMember, error)
	DeleteGroupMember(ctx context.Context, q db.Querier, id uuid.UUID, groupID *uuid.UUID) (model.GroupMember, error)
	ArchiveGroupMember(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupMember, error)
	ExpirePendingMembers(ctx context.Context, q db.Querier, cutoff time.Time) ([]model.GroupMember, error)
}

// Database hands out query handles. *db.DB satisfies it.
type Database interface {
	Conn() db.Querier
	RunInTx(ctx context.Context, fn func(db.Querier) error) error
}

// Publisher receives an event after a workflow commits.
type Publisher interface {
	Publish(event model.GroupEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(model.GroupEvent) {}
