package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
)

// Single-membership operations behind /group-members. They follow the same
// rules as the batch workflows: only an approved OWNER or ADMIN of the row's
// group may change it, and the owner row is never removed.

// CreateMember adds one PENDING MEMBER row to values.GroupID.
func (s *GroupService) CreateMember(ctx context.Context, session model.Session, values model.CreateGroupMember) (model.GroupMember, error) {
	values.Role = model.RoleMember
	values.Status = model.StatusPending

	var member model.GroupMember
	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		if _, err := s.requireRole(ctx, q, values.GroupID, session.AccountID, managers, msgInviteForbidden); err != nil {
			return err
		}
		if err := s.ensureNoLiveMembership(ctx, q, values.GroupID, values.UserID); err != nil {
			return err
		}

		var err error
		member, err = s.store.CreateGroupMember(ctx, q, values)
		return err
	})
	if err != nil {
		return model.GroupMember{}, err
	}

	s.logMember("member created", session, member)
	s.events.Publish(model.NewGroupEvent(model.EventMembersInvited, member.GroupID, session.AccountID, []model.GroupMember{member}))
	return member, nil
}

// memberInManagedGroup loads membership id and checks the caller manages its group.
func (s *GroupService) memberInManagedGroup(ctx context.Context, q db.Querier, session model.Session, id uuid.UUID, msg string) (model.GroupMember, error) {
	target, err := s.store.GetGroupMember(ctx, q, model.MemberLookup{ID: &id})
	if err != nil {
		return model.GroupMember{}, err
	}
	if _, err := s.requireRole(ctx, q, target.GroupID, session.AccountID, managers, msg); err != nil {
		return model.GroupMember{}, err
	}
	return target, nil
}

// UpdateMemberShares changes the share fields of one membership.
func (s *GroupService) UpdateMemberShares(ctx context.Context, session model.Session, id uuid.UUID, values model.UpdateGroupMember) (model.GroupMember, error) {
	shares := model.UpdateGroupMember{
		PercentageShare: values.PercentageShare,
		ExactShare:      values.ExactShare,
	}

	var member model.GroupMember
	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		target, err := s.memberInManagedGroup(ctx, q, session, id, msgMembersForbidden)
		if err != nil {
			return err
		}
		member, err = s.store.UpdateGroupMember(ctx, q, id, &target.GroupID, shares)
		return err
	})
	if err != nil {
		return model.GroupMember{}, err
	}

	s.logMember("member updated", session, member)
	s.events.Publish(model.NewGroupEvent(model.EventMembersUpdated, member.GroupID, session.AccountID, []model.GroupMember{member}))
	return member, nil
}

// RemoveMember hard deletes one membership.
func (s *GroupService) RemoveMember(ctx context.Context, session model.Session, id uuid.UUID) (model.GroupMember, error) {
	var member model.GroupMember
	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		target, err := s.memberInManagedGroup(ctx, q, session, id, msgRemoveForbidden)
		if err != nil {
			return err
		}
		if target.Role == model.RoleOwner {
			return apperror.BadRequest(msgOwnerImmutable)
		}
		member, err = s.store.DeleteGroupMember(ctx, q, id, &target.GroupID)
		return err
	})
	if err != nil {
		return model.GroupMember{}, err
	}

	s.logMember("member removed", session, member)
	s.events.Publish(model.NewGroupEvent(model.EventMembersRemoved, member.GroupID, session.AccountID, []model.GroupMember{member}))
	return member, nil
}

// ArchiveMember stamps deleted_at on one membership.
func (s *GroupService) ArchiveMember(ctx context.Context, session model.Session, id uuid.UUID) (model.GroupMember, error) {
	var member model.GroupMember
	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		target, err := s.memberInManagedGroup(ctx, q, session, id, msgRemoveForbidden)
		if err != nil {
			return err
		}
		if target.Role == model.RoleOwner {
			return apperror.BadRequest(msgOwnerImmutable)
		}
		member, err = s.store.ArchiveGroupMember(ctx, q, id)
		return err
	})
	if err != nil {
		return model.GroupMember{}, err
	}

	s.logMember("member archived", session, member)
	s.events.Publish(model.NewGroupEvent(model.EventMembersUpdated, member.GroupID, session.AccountID, []model.GroupMember{member}))
	return member, nil
}

func (s *GroupService) logMember(msg string, session model.Session, member model.GroupMember) {
	util.Logger.WithFields(logrus.Fields{
		"group_id":  member.GroupID,
		"member_id": member.ID,
		"user_id":   session.AccountID,
	}).Info(msg)
}
