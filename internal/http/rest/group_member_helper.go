package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util/values"
)

func (api *API) CreateGroupMemberHelper(ctx context.Context, session model.Session, req model.CreateGroupMemberRequest) (model.GroupMember, string, string, error) {
	member, err := api.Deps.Groups.CreateMember(ctx, session, req.Values())
	if err != nil {
		status, message := helperError(err, "Failed to create group member")
		return model.GroupMember{}, status, message, err
	}
	return member, values.Created, "Group member created successfully", nil
}

func (api *API) GetGroupMemberHelper(ctx context.Context, id uuid.UUID) (model.GroupMember, string, string, error) {
	member, err := api.Deps.Store.GetGroupMember(ctx, api.Deps.DB.Conn(), model.MemberLookup{ID: &id})
	if err != nil {
		status, message := helperError(err, "Failed to get group member")
		return model.GroupMember{}, status, message, err
	}
	return member, values.Success, "Group member returned successfully", nil
}

func (api *API) SearchGroupMembersHelper(ctx context.Context, params model.SearchParams, filters model.GroupMemberSearchFilters) (model.Page[model.GroupMember], string, string, error) {
	page, err := api.Deps.Store.SearchGroupMembers(ctx, api.Deps.DB.Conn(), params, filters)
	if err != nil {
		status, message := helperError(err, "Failed to search group members")
		return model.Page[model.GroupMember]{}, status, message, err
	}
	return page, values.Success, "Group members returned successfully", nil
}

func (api *API) UpdateGroupMemberHelper(ctx context.Context, session model.Session, id uuid.UUID, req model.UpdateGroupMemberRequest) (model.GroupMember, string, string, error) {
	member, err := api.Deps.Groups.UpdateMemberShares(ctx, session, id, req.Values())
	if err != nil {
		status, message := helperError(err, "Failed to update group member")
		return model.GroupMember{}, status, message, err
	}
	return member, values.Success, "Group member updated successfully", nil
}

func (api *API) DeleteGroupMemberHelper(ctx context.Context, session model.Session, id uuid.UUID) (model.GroupMember, string, string, error) {
	member, err := api.Deps.Groups.RemoveMember(ctx, session, id)
	if err != nil {
		status, message := helperError(err, "Failed to delete group member")
		return model.GroupMember{}, status, message, err
	}
	return member, values.Success, "Group member deleted successfully", nil
}

func (api *API) ArchiveGroupMemberHelper(ctx context.Context, session model.Session, id uuid.UUID) (model.GroupMember, string, string, error) {
	member, err := api.Deps.Groups.ArchiveMember(ctx, session, id)
	if err != nil {
		status, message := helperError(err, "Failed to archive group member")
		return model.GroupMember{}, status, message, err
	}
	return member, values.Success, "Group member archived successfully", nil
}
