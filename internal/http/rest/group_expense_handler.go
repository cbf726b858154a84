package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
	"github.com/bwise1/groupsplit_api/util/tracing"
	"github.com/bwise1/groupsplit_api/util/values"
)

const dateLayout = "2006-01-02"

func (api *API) GroupExpenseRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)

		r.Method(http.MethodPost, "/", Handler(api.CreateGroupExpenseHandler))
		r.Method(http.MethodGet, "/search", Handler(api.SearchGroupExpensesHandler))
		r.Method(http.MethodGet, "/{id}", Handler(api.GetGroupExpenseHandler))
		r.Method(http.MethodPut, "/{id}", Handler(api.UpdateGroupExpenseHandler))
		r.Method(http.MethodDelete, "/{id}", Handler(api.DeleteGroupExpenseHandler))
		r.Method(http.MethodPut, "/{id}/archive", Handler(api.ArchiveGroupExpenseHandler))
	})

	return mux
}

// parseDate accepts RFC 3339 timestamps or plain dates. Empty input means no bound.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (api *API) CreateGroupExpenseHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CreateGroupExpenseRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}

	expense, status, message, err := api.CreateGroupExpenseHelper(r.Context(), req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, expense)
}

func (api *API) SearchGroupExpensesHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var query model.GroupExpenseSearchQuery
	if err := util.DecodeQuery(r.URL.Query(), &query); err != nil {
		return respondWithError(err, "invalid search parameters", values.BadRequestBody, &tc)
	}

	groupID, err := util.StringToUUID(query.GroupID)
	if err != nil {
		return respondWithError(err, "invalid group_id", values.BadRequestBody, &tc)
	}
	startDate, err := parseDate(query.StartDate)
	if err != nil {
		return respondWithError(err, "invalid start_date", values.BadRequestBody, &tc)
	}
	endDate, err := parseDate(query.EndDate)
	if err != nil {
		return respondWithError(err, "invalid end_date", values.BadRequestBody, &tc)
	}

	page, status, message, err := api.SearchGroupExpensesHelper(r.Context(), query.SearchParams, model.GroupExpenseSearchFilters{
		GroupID:    groupID,
		SearchText: query.SearchText,
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, page)
}

func (api *API) GetGroupExpenseHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group expense id", values.BadRequestBody, &tc)
	}

	expense, status, message, err := api.GetGroupExpenseHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, expense)
}

func (api *API) UpdateGroupExpenseHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group expense id", values.BadRequestBody, &tc)
	}

	var req model.UpdateGroupExpenseRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}

	expense, status, message, err := api.UpdateGroupExpenseHelper(r.Context(), id, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, expense)
}

func (api *API) DeleteGroupExpenseHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group expense id", values.BadRequestBody, &tc)
	}

	expense, status, message, err := api.DeleteGroupExpenseHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, expense)
}

func (api *API) ArchiveGroupExpenseHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group expense id", values.BadRequestBody, &tc)
	}

	expense, status, message, err := api.ArchiveGroupExpenseHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, expense)
}
