package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
)

var errInjected = errors.New("injected failure")

// fakeQuerier marks whether a call ran on the transactional handle. The
// embedded Querier is nil; the fake store never calls through it.
type fakeQuerier struct {
	db.Querier
	inTx bool
}

type fakeState struct {
	groups  map[uuid.UUID]model.Group
	members []model.GroupMember
}

func (s fakeState) clone() fakeState {
	groups := make(map[uuid.UUID]model.Group, len(s.groups))
	for id, g := range s.groups {
		groups[id] = g
	}
	return fakeState{groups: groups, members: append([]model.GroupMember(nil), s.members...)}
}

type fakeStore struct {
	state fakeState

	writes        int
	writesOutside int

	// failCreateMemberAt fails the nth CreateGroupMember call, counting from 1.
	failCreateMemberAt int
	createMemberCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: fakeState{groups: map[uuid.UUID]model.Group{}}}
}

func (f *fakeStore) write(q db.Querier) {
	f.writes++
	if fq, ok := q.(fakeQuerier); !ok || !fq.inTx {
		f.writesOutside++
	}
}

func (f *fakeStore) seedGroup(name string) model.Group {
	now := time.Now()
	g := model.Group{ID: uuid.New(), CreatedAt: now, UpdatedAt: now, Name: name, SplitType: model.SplitTypeEqual}
	f.state.groups[g.ID] = g
	return g
}

func (f *fakeStore) seedMember(groupID uuid.UUID, userID *uuid.UUID, role model.MemberRole, status model.MemberStatus) model.GroupMember {
	now := time.Now()
	m := model.GroupMember{
		ID: uuid.New(), CreatedAt: now, UpdatedAt: now,
		GroupID: groupID, UserID: userID, Role: role, Status: status,
	}
	f.state.members = append(f.state.members, m)
	return m
}

func (f *fakeStore) member(id uuid.UUID) (model.GroupMember, bool) {
	for _, m := range f.state.members {
		if m.ID == id {
			return m, true
		}
	}
	return model.GroupMember{}, false
}

func (f *fakeStore) membersOf(groupID uuid.UUID) []model.GroupMember {
	var out []model.GroupMember
	for _, m := range f.state.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeStore) CreateGroup(_ context.Context, q db.Querier, values model.CreateGroup) (model.Group, error) {
	f.write(q)
	now := time.Now()
	g := model.Group{
		ID: uuid.New(), CreatedAt: now, UpdatedAt: now,
		Name: values.Name, Description: values.Description, Tag: values.Tag,
		SplitType: values.SplitType, SettlementSummary: values.SettlementSummary,
	}
	f.state.groups[g.ID] = g
	return g, nil
}

func (f *fakeStore) UpdateGroup(_ context.Context, q db.Querier, id uuid.UUID, values model.UpdateGroup) (model.Group, error) {
	f.write(q)
	g, ok := f.state.groups[id]
	if !ok {
		return model.Group{}, apperror.NotFound("Group not found.")
	}
	if values.Name != nil {
		g.Name = *values.Name
	}
	if values.Description != nil {
		g.Description = values.Description
	}
	if values.Tag != nil {
		g.Tag = values.Tag
	}
	if values.SplitType != nil {
		g.SplitType = *values.SplitType
	}
	g.UpdatedAt = time.Now()
	f.state.groups[id] = g
	return g, nil
}

func (f *fakeStore) SetGroupArchived(_ context.Context, q db.Querier, id uuid.UUID, archived bool) (model.Group, error) {
	f.write(q)
	g, ok := f.state.groups[id]
	if !ok {
		return model.Group{}, apperror.NotFound("Group not found.")
	}
	g.DeletedAt = nil
	if archived {
		now := time.Now()
		g.DeletedAt = &now
	}
	f.state.groups[id] = g
	return g, nil
}

func (f *fakeStore) DeleteGroup(_ context.Context, q db.Querier, id uuid.UUID) (model.Group, error) {
	f.write(q)
	g, ok := f.state.groups[id]
	if !ok {
		return model.Group{}, apperror.NotFound("Group not found.")
	}
	delete(f.state.groups, id)
	return g, nil
}

func (f *fakeStore) CountUserOwnedGroups(_ context.Context, _ db.Querier, userID uuid.UUID) (int, error) {
	count := 0
	for _, m := range f.state.members {
		if m.UserID == nil || *m.UserID != userID || m.Role != model.RoleOwner || m.DeletedAt != nil {
			continue
		}
		if g, ok := f.state.groups[m.GroupID]; ok && g.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateGroupMember(_ context.Context, q db.Querier, values model.CreateGroupMember) (model.GroupMember, error) {
	f.createMemberCalls++
	if f.failCreateMemberAt > 0 && f.createMemberCalls == f.failCreateMemberAt {
		return model.GroupMember{}, errInjected
	}
	f.write(q)
	now := time.Now()
	m := model.GroupMember{
		ID: uuid.New(), CreatedAt: now, UpdatedAt: now,
		GroupID: values.GroupID, UserID: values.UserID, Role: values.Role, Status: values.Status,
		PercentageShare: values.PercentageShare, ExactShare: values.ExactShare,
		PlaceholderAssigneeName: values.PlaceholderAssigneeName,
	}
	f.state.members = append(f.state.members, m)
	return m, nil
}

// GetGroupMember mirrors the SQL ordering: live rows before rejected ones,
// then the newest row.
func (f *fakeStore) GetGroupMember(_ context.Context, _ db.Querier, lookup model.MemberLookup) (model.GroupMember, error) {
	if lookup.ID == nil && lookup.UserID == nil {
		return model.GroupMember{}, apperror.BadRequest("A member id or user id is required.")
	}

	var (
		best  model.GroupMember
		found bool
	)
	rejected := func(m model.GroupMember) bool { return m.Status == model.StatusRejected }
	for _, m := range f.state.members {
		switch {
		case lookup.ID != nil && m.ID != *lookup.ID:
		case lookup.UserID != nil && (m.UserID == nil || *m.UserID != *lookup.UserID):
		case lookup.GroupID != nil && m.GroupID != *lookup.GroupID:
		case lookup.ActiveOnly && m.DeletedAt != nil:
		default:
			if !found || (rejected(best) && !rejected(m)) ||
				(rejected(best) == rejected(m) && !m.CreatedAt.Before(best.CreatedAt)) {
				best, found = m, true
			}
		}
	}
	if !found {
		return model.GroupMember{}, apperror.NotFound("Group member not found.")
	}
	return best, nil
}

func (f *fakeStore) UpdateGroupMember(_ context.Context, q db.Querier, id uuid.UUID, groupID *uuid.UUID, values model.UpdateGroupMember) (model.GroupMember, error) {
	f.write(q)
	for i, m := range f.state.members {
		if m.ID != id || (groupID != nil && m.GroupID != *groupID) {
			continue
		}
		if values.PercentageShare != nil {
			m.PercentageShare = values.PercentageShare
		}
		if values.ExactShare != nil {
			m.ExactShare = values.ExactShare
		}
		if values.Status != nil {
			m.Status = *values.Status
		}
		if values.Role != nil {
			m.Role = *values.Role
		}
		if values.PlaceholderAssigneeName != nil {
			m.PlaceholderAssigneeName = values.PlaceholderAssigneeName
		}
		if values.UserID != nil {
			m.UserID = values.UserID
		}
		m.UpdatedAt = time.Now()
		f.state.members[i] = m
		return m, nil
	}
	return model.GroupMember{}, apperror.NotFound("Group member not found.")
}

func (f *fakeStore) DeleteGroupMember(_ context.Context, q db.Querier, id uuid.UUID, groupID *uuid.UUID) (model.GroupMember, error) {
	f.write(q)
	for i, m := range f.state.members {
		if m.ID == id && (groupID == nil || m.GroupID == *groupID) {
			f.state.members = append(f.state.members[:i:i], f.state.members[i+1:]...)
			return m, nil
		}
	}
	return model.GroupMember{}, apperror.NotFound("Group member not found.")
}

func (f *fakeStore) ArchiveGroupMember(_ context.Context, q db.Querier, id uuid.UUID) (model.GroupMember, error) {
	f.write(q)
	for i, m := range f.state.members {
		if m.ID == id {
			now := time.Now()
			m.DeletedAt = &now
			m.UpdatedAt = now
			f.state.members[i] = m
			return m, nil
		}
	}
	return model.GroupMember{}, apperror.NotFound("Group member not found.")
}

func (f *fakeStore) ExpirePendingMembers(_ context.Context, q db.Querier, cutoff time.Time) ([]model.GroupMember, error) {
	f.write(q)
	var expired []model.GroupMember
	for i, m := range f.state.members {
		if m.Status == model.StatusPending && m.DeletedAt == nil && m.CreatedAt.Before(cutoff) {
			m.Status = model.StatusRejected
			f.state.members[i] = m
			expired = append(expired, m)
		}
	}
	return expired, nil
}

// fakeDB restores the store snapshot when the transaction function fails.
type fakeDB struct {
	store *fakeStore
	txs   int
}

func (d *fakeDB) Conn() db.Querier {
	return fakeQuerier{}
}

func (d *fakeDB) RunInTx(_ context.Context, fn func(db.Querier) error) error {
	d.txs++
	snapshot := d.store.state.clone()
	if err := fn(fakeQuerier{inTx: true}); err != nil {
		d.store.state = snapshot
		return err
	}
	return nil
}

type fakePublisher struct {
	events []model.GroupEvent
}

func (p *fakePublisher) Publish(event model.GroupEvent) {
	p.events = append(p.events, event)
}

func (p *fakePublisher) types() []model.EventType {
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store  *fakeStore
	db     *fakeDB
	events *fakePublisher
	svc    *GroupService
}

func newFixture() *fixture {
	store := newFakeStore()
	database := &fakeDB{store: store}
	events := &fakePublisher{}
	return &fixture{
		store:  store,
		db:     database,
		events: events,
		svc:    NewGroupService(database, store, events),
	}
}

// groupWith seeds a group whose owner is ownerID and returns it.
func (fx *fixture) groupWith(ownerID uuid.UUID) model.Group {
	g := fx.store.seedGroup("Trip")
	fx.store.seedMember(g.ID, &ownerID, model.RoleOwner, model.StatusApproved)
	return g
}

// userIn seeds an account holder with role in groupID and returns the user id.
func (fx *fixture) userIn(groupID uuid.UUID, role model.MemberRole) uuid.UUID {
	userID := uuid.New()
	fx.store.seedMember(groupID, &userID, role, model.StatusApproved)
	return userID
}

func ptr[T any](v T) *T {
	return &v
}
