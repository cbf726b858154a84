package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/model"
)

func TestCreateMember(t *testing.T) {
	fx := newFixture()
	owner := uuid.New()
	group := fx.groupWith(owner)
	admin := fx.userIn(group.ID, model.RoleAdmin)
	invitee := uuid.New()

	member, err := fx.svc.CreateMember(context.Background(), model.Session{AccountID: admin}, model.CreateGroupMember{
		GroupID: group.ID,
		UserID:  &invitee,
		Role:    model.RoleOwner,
		Status:  model.StatusApproved,
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if member.Role != model.RoleMember || member.Status != model.StatusPending {
		t.Errorf("member = %s/%s, want MEMBER/PENDING", member.Role, member.Status)
	}
	if got := fx.events.types(); len(got) != 1 || got[0] != model.EventMembersInvited {
		t.Errorf("events = %v", got)
	}

	_, err = fx.svc.CreateMember(context.Background(), model.Session{AccountID: admin}, model.CreateGroupMember{
		GroupID: group.ID,
		UserID:  &invitee,
	})
	assertKind(t, err, apperror.KindConflict, msgAlreadyMember)
}

func TestCreateMemberForbidden(t *testing.T) {
	fx := newFixture()
	group := fx.groupWith(uuid.New())
	member := fx.userIn(group.ID, model.RoleMember)
	pendingAdmin := uuid.New()
	fx.store.seedMember(group.ID, &pendingAdmin, model.RoleAdmin, model.StatusPending)

	for name, caller := range map[string]uuid.UUID{
		"stranger":      uuid.New(),
		"plain member":  member,
		"pending admin": pendingAdmin,
	} {
		t.Run(name, func(t *testing.T) {
			before := len(fx.store.membersOf(group.ID))
			_, err := fx.svc.CreateMember(context.Background(), model.Session{AccountID: caller}, model.CreateGroupMember{
				GroupID:                 group.ID,
				PlaceholderAssigneeName: ptr("Eve"),
			})
			assertKind(t, err, apperror.KindForbidden, msgInviteForbidden)
			if got := len(fx.store.membersOf(group.ID)); got != before {
				t.Fatalf("members = %d, want %d", got, before)
			}
		})
	}
}

func TestUpdateMemberShares(t *testing.T) {
	fx := newFixture()
	owner := uuid.New()
	group := fx.groupWith(owner)
	userID := uuid.New()
	target := fx.store.seedMember(group.ID, &userID, model.RoleMember, model.StatusPending)

	approved := model.StatusApproved
	other := uuid.New()
	member, err := fx.svc.UpdateMemberShares(context.Background(), model.Session{AccountID: owner}, target.ID, model.UpdateGroupMember{
		PercentageShare: ptr(40.0),
		ExactShare:      ptr(decimal.RequireFromString("12.50")),
		Status:          &approved,
		Role:            ptr(model.RoleAdmin),
		UserID:          &other,
	})
	if err != nil {
		t.Fatalf("UpdateMemberShares: %v", err)
	}

	if member.PercentageShare == nil || *member.PercentageShare != 40 {
		t.Errorf("percentage share = %v", member.PercentageShare)
	}
	if member.ExactShare == nil || !member.ExactShare.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("exact share = %v", member.ExactShare)
	}
	if member.Status != model.StatusPending || member.Role != model.RoleMember || *member.UserID != userID {
		t.Errorf("non-share fields changed: %+v", member)
	}
	if got := fx.events.types(); len(got) != 1 || got[0] != model.EventMembersUpdated {
		t.Errorf("events = %v", got)
	}
}

func TestUpdateMemberSharesForbidden(t *testing.T) {
	fx := newFixture()
	group := fx.groupWith(uuid.New())
	caller := fx.userIn(group.ID, model.RoleMember)
	target := fx.store.seedMember(group.ID, ptr(uuid.New()), model.RoleMember, model.StatusApproved)

	_, err := fx.svc.UpdateMemberShares(context.Background(), model.Session{AccountID: caller}, target.ID, model.UpdateGroupMember{
		PercentageShare: ptr(90.0),
	})
	assertKind(t, err, apperror.KindForbidden, msgMembersForbidden)

	stored, _ := fx.store.member(target.ID)
	if stored.PercentageShare != nil {
		t.Fatalf("share written by a non-manager")
	}
	if fx.store.writes != 0 {
		t.Fatalf("writes = %d, want 0", fx.store.writes)
	}
}

func TestRemoveAndArchiveMember(t *testing.T) {
	type op func(fx *fixture, session model.Session, id uuid.UUID) (model.GroupMember, error)
	remove := func(fx *fixture, session model.Session, id uuid.UUID) (model.GroupMember, error) {
		return fx.svc.RemoveMember(context.Background(), session, id)
	}
	archive := func(fx *fixture, session model.Session, id uuid.UUID) (model.GroupMember, error) {
		return fx.svc.ArchiveMember(context.Background(), session, id)
	}

	for opName, run := range map[string]op{"remove": remove, "archive": archive} {
		t.Run(opName+" by outsider", func(t *testing.T) {
			fx := newFixture()
			group := fx.groupWith(uuid.New())
			target := fx.store.seedMember(group.ID, ptr(uuid.New()), model.RoleMember, model.StatusApproved)

			_, err := run(fx, model.Session{AccountID: uuid.New()}, target.ID)
			assertKind(t, err, apperror.KindForbidden, msgRemoveForbidden)
			if stored, ok := fx.store.member(target.ID); !ok || stored.DeletedAt != nil {
				t.Fatalf("target changed: %+v", stored)
			}
		})

		t.Run(opName+" owner row", func(t *testing.T) {
			fx := newFixture()
			owner := uuid.New()
			group := fx.groupWith(owner)
			admin := fx.userIn(group.ID, model.RoleAdmin)
			ownerRow := fx.store.membersOf(group.ID)[0]

			_, err := run(fx, model.Session{AccountID: admin}, ownerRow.ID)
			assertKind(t, err, apperror.KindBadRequest, msgOwnerImmutable)
			if stored, ok := fx.store.member(ownerRow.ID); !ok || stored.DeletedAt != nil {
				t.Fatalf("owner row changed: %+v", stored)
			}
		})

		t.Run(opName+" unknown id", func(t *testing.T) {
			fx := newFixture()
			owner := uuid.New()
			fx.groupWith(owner)

			_, err := run(fx, model.Session{AccountID: owner}, uuid.New())
			assertKind(t, err, apperror.KindNotFound, "")
		})
	}
}

func TestRemoveMember(t *testing.T) {
	fx := newFixture()
	group := fx.groupWith(uuid.New())
	admin := fx.userIn(group.ID, model.RoleAdmin)
	target := fx.store.seedMember(group.ID, ptr(uuid.New()), model.RoleMember, model.StatusApproved)

	if _, err := fx.svc.RemoveMember(context.Background(), model.Session{AccountID: admin}, target.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, ok := fx.store.member(target.ID); ok {
		t.Fatalf("member still stored")
	}
	if got := fx.events.types(); len(got) != 1 || got[0] != model.EventMembersRemoved {
		t.Errorf("events = %v", got)
	}
}

func TestArchiveMember(t *testing.T) {
	fx := newFixture()
	owner := uuid.New()
	group := fx.groupWith(owner)
	userID := uuid.New()
	target := fx.store.seedMember(group.ID, &userID, model.RoleMember, model.StatusApproved)

	member, err := fx.svc.ArchiveMember(context.Background(), model.Session{AccountID: owner}, target.ID)
	if err != nil {
		t.Fatalf("ArchiveMember: %v", err)
	}
	if member.DeletedAt == nil {
		t.Fatalf("deleted_at not set")
	}
	err = fx.svc.AuthorizeSubscription(context.Background(), userID, group.ID)
	assertKind(t, err, apperror.KindForbidden, msgSubscribeDenied)
	if got := fx.events.types(); len(got) != 1 || got[0] != model.EventMembersUpdated {
		t.Errorf("events = %v", got)
	}
}
