package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util/values"
)

func (api *API) CreateGroupHelper(ctx context.Context, session model.Session, req model.CreateGroupRequest) (model.GroupWithMembers, string, string, error) {
	group, err := api.Deps.Groups.CreateGroup(ctx, session, req)
	if err != nil {
		status, message := helperError(err, "Failed to create group")
		return model.GroupWithMembers{}, status, message, err
	}
	return group, values.Created, "Group created successfully", nil
}

func (api *API) GetGroupHelper(ctx context.Context, id uuid.UUID) (model.GroupWithMembers, string, string, error) {
	conn := api.Deps.DB.Conn()

	group, err := api.Deps.Store.GetGroup(ctx, conn, id)
	if err != nil {
		status, message := helperError(err, "Failed to get group")
		return model.GroupWithMembers{}, status, message, err
	}

	members, err := api.Deps.Store.ListGroupMembers(ctx, conn, id)
	if err != nil {
		status, message := helperError(err, "Failed to get group members")
		return model.GroupWithMembers{}, status, message, err
	}
	if members == nil {
		members = []model.GroupMember{}
	}

	return model.GroupWithMembers{Group: group, Members: members}, values.Success, "Group returned successfully", nil
}

func (api *API) SearchGroupsHelper(ctx context.Context, query model.GroupSearchQuery) (model.Page[model.Group], string, string, error) {
	page, err := api.Deps.Store.SearchGroups(ctx, api.Deps.DB.Conn(), query.SearchParams, model.GroupSearchFilters{
		SearchText: query.SearchText,
	})
	if err != nil {
		status, message := helperError(err, "Failed to search groups")
		return model.Page[model.Group]{}, status, message, err
	}
	return page, values.Success, "Groups returned successfully", nil
}

func (api *API) UpdateGroupHelper(ctx context.Context, session model.Session, id uuid.UUID, req model.UpdateGroupRequest) (model.GroupUpdateResult, string, string, error) {
	result, err := api.Deps.Groups.UpdateGroup(ctx, session, id, req)
	if err != nil {
		status, message := helperError(err, "Failed to update group")
		return model.GroupUpdateResult{}, status, message, err
	}
	return result, values.Success, "Group updated successfully", nil
}

func (api *API) ArchiveGroupHelper(ctx context.Context, session model.Session, id uuid.UUID, archived bool) (model.Group, string, string, error) {
	var (
		group model.Group
		err   error
	)
	if archived {
		group, err = api.Deps.Groups.ArchiveGroup(ctx, session, id)
	} else {
		group, err = api.Deps.Groups.UnarchiveGroup(ctx, session, id)
	}
	if err != nil {
		status, message := helperError(err, "Failed to archive group")
		return model.Group{}, status, message, err
	}

	if archived {
		return group, values.Success, "Group archived successfully", nil
	}
	return group, values.Success, "Group unarchived successfully", nil
}

func (api *API) DeleteGroupHelper(ctx context.Context, session model.Session, id uuid.UUID) (model.Group, string, string, error) {
	group, err := api.Deps.Groups.DeleteGroup(ctx, session, id)
	if err != nil {
		status, message := helperError(err, "Failed to delete group")
		return model.Group{}, status, message, err
	}
	return group, values.Success, "Group deleted successfully", nil
}

func (api *API) InviteMembersHelper(ctx context.Context, session model.Session, id uuid.UUID, members []model.InviteMember) ([]model.GroupMember, string, string, error) {
	invited, err := api.Deps.Groups.InviteMembers(ctx, session, id, members)
	if err != nil {
		status, message := helperError(err, "Failed to invite members")
		return nil, status, message, err
	}
	return invited, values.Created, "Members invited successfully", nil
}

func (api *API) RemoveMembersHelper(ctx context.Context, session model.Session, id uuid.UUID, memberIDs []uuid.UUID) ([]model.GroupMember, string, string, error) {
	removed, err := api.Deps.Groups.RemoveMembers(ctx, session, id, memberIDs)
	if err != nil {
		status, message := helperError(err, "Failed to remove members")
		return nil, status, message, err
	}
	return removed, values.Success, "Members removed successfully", nil
}

func (api *API) UpdateMembersHelper(ctx context.Context, session model.Session, id uuid.UUID, updates []model.MemberUpdate) ([]model.GroupMember, string, string, error) {
	updated, err := api.Deps.Groups.UpdateMembers(ctx, session, id, updates)
	if err != nil {
		status, message := helperError(err, "Failed to update members")
		return nil, status, message, err
	}
	return updated, values.Success, "Members updated successfully", nil
}

func (api *API) RespondToInvitationHelper(ctx context.Context, session model.Session, id uuid.UUID, accept bool) (model.GroupMember, string, string, error) {
	member, err := api.Deps.Groups.RespondToInvitation(ctx, session, id, accept)
	if err != nil {
		status, message := helperError(err, "Failed to answer invitation")
		return model.GroupMember{}, status, message, err
	}
	if accept {
		return member, values.Success, "Invitation accepted", nil
	}
	return member, values.Success, "Invitation rejected", nil
}
