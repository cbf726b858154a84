package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
)

const (
	msgQuota             = "You can only have up to 5 owned groups."
	msgInviteForbidden   = "You are not authorized to invite members to this group."
	msgInviteEmpty       = "You must invite at least one member to a group."
	msgRemoveForbidden   = "You are not authorized to remove members from this group."
	msgRemoveEmpty       = "You must remove at least one member from a group."
	msgUpdateForbidden   = "You are not authorized to update members of this group."
	msgUpdateEmpty       = "You must update at least one member of a group."
	msgMembersForbidden  = "You are not authorized to update members in this group."
	msgMembersEmpty      = "You must update at least one member in a group."
	msgArchiveForbidden  = "You are not authorized to update this group."
	msgDeleteForbidden   = "You are not authorized to delete this group."
	msgOwnerNotGrantable = "The owner role cannot be assigned to a member."
	msgOwnerImmutable    = "The group owner cannot be demoted or removed."
	msgNoInvitation      = "You have no invitation to this group."
	msgAlreadyAnswered   = "This invitation has already been answered."
	msgSubscribeDenied   = "You are not a member of this group."
	msgAlreadyMember     = "This user already has a membership in this group."
)

type GroupService struct {
	db     Database
	store  Store
	events Publisher
}

func NewGroupService(database Database, store Store, events Publisher) *GroupService {
	if events == nil {
		events = noopPublisher{}
	}
	return &GroupService{db: database, store: store, events: events}
}

func ownerOnly(role model.MemberRole) bool {
	return role == model.RoleOwner
}

func managers(role model.MemberRole) bool {
	return role.CanManageMembers()
}

// requireRole loads the caller's active membership and checks it against
// allowed. Only APPROVED memberships count: pending and rejected invitees,
// like callers without a membership, get the same Forbidden as callers with
// the wrong role.
func (s *GroupService) requireRole(ctx context.Context, q db.Querier, groupID, userID uuid.UUID,
	allowed func(model.MemberRole) bool, msg string) (model.GroupMember, error) {
	member, err := s.store.GetGroupMember(ctx, q, model.MemberLookup{
		UserID:     &userID,
		GroupID:    &groupID,
		ActiveOnly: true,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.GroupMember{}, apperror.Forbidden(msg)
		}
		return model.GroupMember{}, err
	}
	if member.Status != model.StatusApproved || !allowed(member.Role) {
		return model.GroupMember{}, apperror.Forbidden(msg)
	}
	return member, nil
}

// ensureNoLiveMembership fails with Conflict when userID already holds a
// pending or approved membership in groupID. Rejected rows may be re-invited.
func (s *GroupService) ensureNoLiveMembership(ctx context.Context, q db.Querier, groupID uuid.UUID, userID *uuid.UUID) error {
	if userID == nil {
		return nil
	}
	existing, err := s.store.GetGroupMember(ctx, q, model.MemberLookup{
		UserID:     userID,
		GroupID:    &groupID,
		ActiveOnly: true,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.Status != model.StatusRejected {
		return apperror.Conflict(msgAlreadyMember, nil)
	}
	return nil
}

func validateInvites(members []model.InviteMember) error {
	for _, m := range members {
		if m.UserID != nil && m.Role != nil && *m.Role == model.RoleOwner {
			return apperror.BadRequest(msgOwnerNotGrantable)
		}
	}
	return nil
}

// inviteValues builds a PENDING membership. The requested role only applies to
// invitees with an account.
func inviteValues(groupID uuid.UUID, m model.InviteMember) model.CreateGroupMember {
	role := model.RoleMember
	if m.UserID != nil && m.Role != nil {
		role = *m.Role
	}
	return model.CreateGroupMember{
		GroupID:                 groupID,
		UserID:                  m.UserID,
		Role:                    role,
		Status:                  model.StatusPending,
		PlaceholderAssigneeName: m.PlaceholderAssigneeName,
	}
}

func (s *GroupService) createInvites(ctx context.Context, q db.Querier, groupID uuid.UUID, members []model.InviteMember) ([]model.GroupMember, error) {
	created := make([]model.GroupMember, 0, len(members))
	for _, m := range members {
		if err := s.ensureNoLiveMembership(ctx, q, groupID, m.UserID); err != nil {
			return nil, err
		}
		member, err := s.store.CreateGroupMember(ctx, q, inviteValues(groupID, m))
		if err != nil {
			return nil, err
		}
		created = append(created, member)
	}
	return created, nil
}

func (s *GroupService) CreateGroup(ctx context.Context, session model.Session, req model.CreateGroupRequest) (model.GroupWithMembers, error) {
	var result model.GroupWithMembers

	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		owned, err := s.store.CountUserOwnedGroups(ctx, q, session.AccountID)
		if err != nil {
			return err
		}
		if owned >= MaxOwnedGroups {
			return apperror.QuotaExceeded(msgQuota)
		}
		if len(req.Members) == 0 {
			return apperror.BadRequest(msgInviteEmpty)
		}
		if err := validateInvites(req.Members); err != nil {
			return err
		}

		splitType := model.SplitTypeEqual
		if req.SplitType != nil {
			splitType = *req.SplitType
		}
		group, err := s.store.CreateGroup(ctx, q, model.CreateGroup{
			Name:        req.Name,
			Description: req.Description,
			Tag:         req.Tag,
			SplitType:   splitType,
		})
		if err != nil {
			return err
		}

		accountID := session.AccountID
		owner, err := s.store.CreateGroupMember(ctx, q, model.CreateGroupMember{
			GroupID: group.ID,
			UserID:  &accountID,
			Role:    model.RoleOwner,
			Status:  model.StatusApproved,
		})
		if err != nil {
			return err
		}

		invited, err := s.createInvites(ctx, q, group.ID, req.Members)
		if err != nil {
			return err
		}

		result = model.GroupWithMembers{
			Group:   group,
			Members: append([]model.GroupMember{owner}, invited...),
		}
		return nil
	})
	if err != nil {
		return model.GroupWithMembers{}, err
	}

	util.Logger.WithFields(logrus.Fields{
		"group_id": result.Group.ID,
		"user_id":  session.AccountID,
		"members":  len(result.Members),
	}).Info("group created")
	s.events.Publish(model.NewGroupEvent(model.EventGroupCreated, result.Group.ID, session.AccountID, result))

	return result, nil
}

func (s *GroupService) InviteMembers(ctx context.Context, session model.Session, groupID uuid.UUID, members []model.InviteMember) ([]model.GroupMember, error) {
	var invited []model.GroupMember

	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		if _, err := s.requireRole(ctx, q, groupID, session.AccountID, managers, msgInviteForbidden); err != nil {
			return err
		}
		if len(members) == 0 {
			return apperror.BadRequest(msgInviteEmpty)
		}
		if err := validateInvites(members); err != nil {
			return err
		}

		var err error
		invited, err = s.createInvites(ctx, q, groupID, members)
		return err
	})
	if err != nil {
		return nil, err
	}

	util.Logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  session.AccountID,
		"invited":  len(invited),
	}).Info("members invited")
	s.events.Publish(model.NewGroupEvent(model.EventMembersInvited, groupID, session.AccountID, invited))

	return invited, nil
}

func (s *GroupService) RemoveMembers(ctx context.Context, session model.Session, groupID uuid.UUID, memberIDs []uuid.UUID) ([]model.GroupMember, error) {
	var removed []model.GroupMember

	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		if _, err := s.requireRole(ctx, q, groupID, session.AccountID, managers, msgRemoveForbidden); err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return apperror.BadRequest(msgRemoveEmpty)
		}

		removed = make([]model.GroupMember, 0, len(memberIDs))
		for _, id := range memberIDs {
			member, err := s.store.DeleteGroupMember(ctx, q, id, &groupID)
			if err != nil {
				return err
			}
			// The delete is rolled back with the rest of the batch.
			if member.Role == model.RoleOwner {
				return apperror.BadRequest(msgOwnerImmutable)
			}
			removed = append(removed, member)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.Logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  session.AccountID,
		"removed":  len(removed),
	}).Info("members removed")
	s.events.Publish(model.NewGroupEvent(model.EventMembersRemoved, groupID, session.AccountID, removed))

	return removed, nil
}

// applyMemberUpdate updates one membership of groupID, enforcing the owner
// role rules and the status state machine.
func (s *GroupService) applyMemberUpdate(ctx context.Context, q db.Querier, groupID uuid.UUID, update model.MemberUpdate) (model.GroupMember, error) {
	values := update.Values()

	if values.Role != nil && *values.Role == model.RoleOwner {
		return model.GroupMember{}, apperror.BadRequest(msgOwnerNotGrantable)
	}

	current, err := s.store.GetGroupMember(ctx, q, model.MemberLookup{ID: &update.ID, GroupID: &groupID})
	if err != nil {
		return model.GroupMember{}, err
	}
	if current.Role == model.RoleOwner && values.Role != nil {
		return model.GroupMember{}, apperror.BadRequest(msgOwnerImmutable)
	}
	if values.Status != nil && !current.Status.CanTransitionTo(*values.Status) {
		return model.GroupMember{}, apperror.BadRequest(
			fmt.Sprintf("A member cannot move from %s to %s.", current.Status, *values.Status))
	}

	return s.store.UpdateGroupMember(ctx, q, update.ID, &groupID, values)
}

func (s *GroupService) applyMemberUpdates(ctx context.Context, q db.Querier, groupID uuid.UUID, updates []model.MemberUpdate) ([]model.GroupMember, error) {
	updated := make([]model.GroupMember, 0, len(updates))
	for _, u := range updates {
		member, err := s.applyMemberUpdate(ctx, q, groupID, u)
		if err != nil {
			return nil, err
		}
		updated = append(updated, member)
	}
	return updated, nil
}

// UpdateGroup applies group field changes and member updates in one
// transaction. A non-nil but empty member list rejects the whole request
// before anything is written.
func (s *GroupService) UpdateGroup(ctx context.Context, session model.Session, groupID uuid.UUID, req model.UpdateGroupRequest) (model.GroupUpdateResult, error) {
	result := model.GroupUpdateResult{GroupID: groupID, UpdatedMembers: []model.GroupMember{}}

	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		if _, err := s.requireRole(ctx, q, groupID, session.AccountID, managers, msgUpdateForbidden); err != nil {
			return err
		}
		if req.Members != nil && len(req.Members) == 0 {
			return apperror.BadRequest(msgUpdateEmpty)
		}

		if fields := req.GroupFields(); !fields.IsEmpty() {
			if _, err := s.store.UpdateGroup(ctx, q, groupID, fields); err != nil {
				return err
			}
		}

		if len(req.Members) > 0 {
			updated, err := s.applyMemberUpdates(ctx, q, groupID, req.Members)
			if err != nil {
				return err
			}
			result.UpdatedMembers = updated
		}
		return nil
	})
	if err != nil {
		return model.GroupUpdateResult{}, err
	}

	util.Logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  session.AccountID,
		"members":  len(result.UpdatedMembers),
	}).Info("group updated")
	s.events.Publish(model.NewGroupEvent(model.EventGroupUpdated, groupID, session.AccountID, result))

	return result, nil
}

func (s *GroupService) UpdateMembers(ctx context.Context, session model.Session, groupID uuid.UUID, updates []model.MemberUpdate) ([]model.GroupMember, error) {
	var updated []model.GroupMember

	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		if _, err := s.requireRole(ctx, q, groupID, session.AccountID, managers, msgMembersForbidden); err != nil {
			return err
		}
		if len(updates) == 0 {
			return apperror.BadRequest(msgMembersEmpty)
		}

		var err error
		updated, err = s.applyMemberUpdates(ctx, q, groupID, updates)
		return err
	})
	if err != nil {
		return nil, err
	}

	util.Logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  session.AccountID,
		"members":  len(updated),
	}).Info("members updated")
	s.events.Publish(model.NewGroupEvent(model.EventMembersUpdated, groupID, session.AccountID, updated))

	return updated, nil
}

func (s *GroupService) setArchived(ctx context.Context, session model.Session, groupID uuid.UUID, archived bool) (model.Group, error) {
	q := s.db.Conn()
	if _, err := s.requireRole(ctx, q, groupID, session.AccountID, ownerOnly, msgArchiveForbidden); err != nil {
		return model.Group{}, err
	}

	group, err := s.store.SetGroupArchived(ctx, q, groupID, archived)
	if err != nil {
		return model.Group{}, err
	}

	event := model.EventGroupUnarchived
	if archived {
		event = model.EventGroupArchived
	}
	util.Logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  session.AccountID,
	}).Info(string(event))
	s.events.Publish(model.NewGroupEvent(event, groupID, session.AccountID, group))

	return group, nil
}

// ArchiveGroup stamps deleted_at with the current time. Archiving an archived
// group moves the stamp forward.
func (s *GroupService) ArchiveGroup(ctx context.Context, session model.Session, groupID uuid.UUID) (model.Group, error) {
	return s.setArchived(ctx, session, groupID, true)
}

func (s *GroupService) UnarchiveGroup(ctx context.Context, session model.Session, groupID uuid.UUID) (model.Group, error) {
	return s.setArchived(ctx, session, groupID, false)
}

// DeleteGroup hard deletes the group row. Dependent rows go with it through
// the schema's cascading foreign keys.
func (s *GroupService) DeleteGroup(ctx context.Context, session model.Session, groupID uuid.UUID) (model.Group, error) {
	q := s.db.Conn()
	if _, err := s.requireRole(ctx, q, groupID, session.AccountID, ownerOnly, msgDeleteForbidden); err != nil {
		return model.Group{}, err
	}

	group, err := s.store.DeleteGroup(ctx, q, groupID)
	if err != nil {
		return model.Group{}, err
	}

	util.Logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  session.AccountID,
	}).Info("group deleted")
	s.events.Publish(model.NewGroupEvent(model.EventGroupDeleted, groupID, session.AccountID, group))

	return group, nil
}

// RespondToInvitation lets the invited user accept or reject their own
// PENDING membership.
func (s *GroupService) RespondToInvitation(ctx context.Context, session model.Session, groupID uuid.UUID, accept bool) (model.GroupMember, error) {
	next := model.StatusRejected
	if accept {
		next = model.StatusApproved
	}

	var member model.GroupMember
	err := s.db.RunInTx(ctx, func(q db.Querier) error {
		accountID := session.AccountID
		current, err := s.store.GetGroupMember(ctx, q, model.MemberLookup{
			UserID:     &accountID,
			GroupID:    &groupID,
			ActiveOnly: true,
		})
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.NotFound(msgNoInvitation)
			}
			return err
		}
		if current.Status != model.StatusPending {
			return apperror.BadRequest(msgAlreadyAnswered)
		}

		member, err = s.store.UpdateGroupMember(ctx, q, current.ID, &groupID, model.UpdateGroupMember{Status: &next})
		return err
	})
	if err != nil {
		return model.GroupMember{}, err
	}

	util.Logger.WithFields(logrus.Fields{
		"group_id":  groupID,
		"member_id": member.ID,
		"status":    member.Status,
	}).Info("invitation answered")
	s.events.Publish(model.NewGroupEvent(model.EventInvitationResponded, groupID, session.AccountID, member))

	return member, nil
}

// ExpireInvitations rejects PENDING memberships created before cutoff and
// reports each affected group to its subscribers.
func (s *GroupService) ExpireInvitations(ctx context.Context, cutoff time.Time) (int, error) {
	expired, err := s.store.ExpirePendingMembers(ctx, s.db.Conn(), cutoff)
	if err != nil {
		return 0, err
	}

	byGroup := make(map[uuid.UUID][]model.GroupMember)
	for _, m := range expired {
		byGroup[m.GroupID] = append(byGroup[m.GroupID], m)
	}
	for groupID, members := range byGroup {
		s.events.Publish(model.NewGroupEvent(model.EventMembersUpdated, groupID, uuid.Nil, members))
	}

	return len(expired), nil
}

// AuthorizeSubscription allows users with an active membership to follow a
// group's events.
func (s *GroupService) AuthorizeSubscription(ctx context.Context, userID, groupID uuid.UUID) error {
	allowAny := func(model.MemberRole) bool { return true }
	_, err := s.requireRole(ctx, s.db.Conn(), groupID, userID, allowAny, msgSubscribeDenied)
	return err
}
