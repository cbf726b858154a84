package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
	"github.com/bwise1/groupsplit_api/util/tracing"
	"github.com/bwise1/groupsplit_api/util/values"
)

func (api *API) GroupRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)

		r.Method(http.MethodPost, "/", Handler(api.CreateGroupHandler))
		r.Method(http.MethodGet, "/search", Handler(api.SearchGroupsHandler))
		r.Method(http.MethodGet, "/{groupID}", Handler(api.GetGroupHandler))
		// Owner or admin. Group fields and member shares change together.
		r.Method(http.MethodPut, "/{groupID}", Handler(api.UpdateGroupHandler))
		// Owner only.
		r.Method(http.MethodDelete, "/{groupID}", Handler(api.DeleteGroupHandler))
		r.Method(http.MethodPut, "/{groupID}/archive", api.archiveGroupHandler(true))
		r.Method(http.MethodPut, "/{groupID}/unarchive", api.archiveGroupHandler(false))

		r.Method(http.MethodPost, "/{groupID}/members", Handler(api.InviteMembersHandler))
		r.Method(http.MethodDelete, "/{groupID}/members", Handler(api.RemoveMembersHandler))
		r.Method(http.MethodPut, "/{groupID}/members", Handler(api.UpdateMembersHandler))

		// The invited user answers their own pending membership.
		r.Method(http.MethodPost, "/{groupID}/invitation/accept", api.respondToInvitationHandler(true))
		r.Method(http.MethodPost, "/{groupID}/invitation/reject", api.respondToInvitationHandler(false))
	})

	return mux
}

func (api *API) CreateGroupHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CreateGroupRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}

	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	group, status, message, err := api.CreateGroupHelper(r.Context(), session, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, group)
}

func (api *API) SearchGroupsHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var query model.GroupSearchQuery
	if err := util.DecodeQuery(r.URL.Query(), &query); err != nil {
		return respondWithError(err, "invalid search parameters", values.BadRequestBody, &tc)
	}

	page, status, message, err := api.SearchGroupsHelper(r.Context(), query)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, page)
}

func (api *API) GetGroupHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
	}

	group, status, message, err := api.GetGroupHelper(r.Context(), groupID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, group)
}

func (api *API) UpdateGroupHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
	}

	var req model.UpdateGroupRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}

	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	result, status, message, err := api.UpdateGroupHelper(r.Context(), session, groupID, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, result)
}

func (api *API) DeleteGroupHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
	}
	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	group, status, message, err := api.DeleteGroupHelper(r.Context(), session, groupID)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, group)
}

func (api *API) archiveGroupHandler(archived bool) Handler {
	return func(_ http.ResponseWriter, r *http.Request) *ServerResponse {
		tc := tracing.FromContext(r.Context())

		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
		}
		session, err := sessionFromRequest(r)
		if err != nil {
			return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
		}

		group, status, message, err := api.ArchiveGroupHelper(r.Context(), session, groupID, archived)
		if err != nil {
			return respondWithError(err, message, status, &tc)
		}
		return success(status, message, group)
	}
}

func (api *API) InviteMembersHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
	}

	var req model.InviteMembersRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}

	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	invited, status, message, err := api.InviteMembersHelper(r.Context(), session, groupID, req.Members)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, invited)
}

func (api *API) RemoveMembersHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
	}

	var req model.RemoveMembersRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}

	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	removed, status, message, err := api.RemoveMembersHelper(r.Context(), session, groupID, req.MemberIDs)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, removed)
}

func (api *API) UpdateMembersHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	groupID, err := uuidParam(r, "groupID")
	if err != nil {
		return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
	}

	var req model.UpdateMembersRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}

	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	updated, status, message, err := api.UpdateMembersHelper(r.Context(), session, groupID, req.Members)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, updated)
}

func (api *API) respondToInvitationHandler(accept bool) Handler {
	return func(_ http.ResponseWriter, r *http.Request) *ServerResponse {
		tc := tracing.FromContext(r.Context())

		groupID, err := uuidParam(r, "groupID")
		if err != nil {
			return respondWithError(err, "invalid group id", values.BadRequestBody, &tc)
		}
		session, err := sessionFromRequest(r)
		if err != nil {
			return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
		}

		member, status, message, err := api.RespondToInvitationHelper(r.Context(), session, groupID, accept)
		if err != nil {
			return respondWithError(err, message, status, &tc)
		}
		return success(status, message, member)
	}
}
