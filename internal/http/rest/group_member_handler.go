package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
	"github.com/bwise1/groupsplit_api/util/tracing"
	"github.com/bwise1/groupsplit_api/util/values"
)

func (api *API) GroupMemberRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)

		r.Method(http.MethodPost, "/", Handler(api.CreateGroupMemberHandler))
		r.Method(http.MethodGet, "/search", Handler(api.SearchGroupMembersHandler))
		r.Method(http.MethodGet, "/{id}", Handler(api.GetGroupMemberHandler))
		r.Method(http.MethodPut, "/{id}", Handler(api.UpdateGroupMemberHandler))
		r.Method(http.MethodDelete, "/{id}", Handler(api.DeleteGroupMemberHandler))
		r.Method(http.MethodPut, "/{id}/archive", Handler(api.ArchiveGroupMemberHandler))
	})

	return mux
}

func (api *API) CreateGroupMemberHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CreateGroupMemberRequest
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

	member, status, message, err := api.CreateGroupMemberHelper(r.Context(), session, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, member)
}

func (api *API) SearchGroupMembersHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var query model.GroupMemberSearchQuery
	if err := util.DecodeQuery(r.URL.Query(), &query); err != nil {
		return respondWithError(err, "invalid search parameters", values.BadRequestBody, &tc)
	}

	groupID, err := util.OptionalUUID(query.GroupID)
	if err != nil {
		return respondWithError(err, "invalid group_id", values.BadRequestBody, &tc)
	}
	userID, err := util.OptionalUUID(query.UserID)
	if err != nil {
		return respondWithError(err, "invalid user_id", values.BadRequestBody, &tc)
	}

	page, status, message, err := api.SearchGroupMembersHelper(r.Context(), query.SearchParams, model.GroupMemberSearchFilters{
		GroupID: groupID,
		UserID:  userID,
	})
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, page)
}

func (api *API) GetGroupMemberHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group member id", values.BadRequestBody, &tc)
	}

	member, status, message, err := api.GetGroupMemberHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, member)
}

func (api *API) UpdateGroupMemberHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group member id", values.BadRequestBody, &tc)
	}

	var req model.UpdateGroupMemberRequest
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

	member, status, message, err := api.UpdateGroupMemberHelper(r.Context(), session, id, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, member)
}

func (api *API) DeleteGroupMemberHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group member id", values.BadRequestBody, &tc)
	}

	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	member, status, message, err := api.DeleteGroupMemberHelper(r.Context(), session, id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, member)
}

func (api *API) ArchiveGroupMemberHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group member id", values.BadRequestBody, &tc)
	}

	session, err := sessionFromRequest(r)
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	member, status, message, err := api.ArchiveGroupMemberHelper(r.Context(), session, id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, member)
}
