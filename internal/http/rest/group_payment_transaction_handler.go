package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
	"github.com/bwise1/groupsplit_api/util/tracing"
	"github.com/bwise1/groupsplit_api/util/values"
)

func (api *API) GroupPaymentTransactionRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)

		r.Method(http.MethodPost, "/", Handler(api.CreateGroupPaymentTransactionHandler))
		r.Method(http.MethodGet, "/search", Handler(api.SearchGroupPaymentTransactionsHandler))
		r.Method(http.MethodGet, "/{id}", Handler(api.GetGroupPaymentTransactionHandler))
		r.Method(http.MethodPut, "/{id}", Handler(api.UpdateGroupPaymentTransactionHandler))
		r.Method(http.MethodDelete, "/{id}", Handler(api.DeleteGroupPaymentTransactionHandler))
		r.Method(http.MethodPut, "/{id}/archive", Handler(api.ArchiveGroupPaymentTransactionHandler))
	})

	return mux
}

func (api *API) CreateGroupPaymentTransactionHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var req model.CreateGroupPaymentTransactionRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}
	if req.SenderMemberID == req.ReceiverMemberID {
		err := errors.New("sender and receiver are the same member")
		return respondWithError(err, "sender and receiver must be different members", values.BadRequestBody, &tc)
	}

	payment, status, message, err := api.CreateGroupPaymentTransactionHelper(r.Context(), req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, payment)
}

func (api *API) SearchGroupPaymentTransactionsHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	var query model.GroupPaymentTransactionSearchQuery
	if err := util.DecodeQuery(r.URL.Query(), &query); err != nil {
		return respondWithError(err, "invalid search parameters", values.BadRequestBody, &tc)
	}

	filters := model.GroupPaymentTransactionSearchFilters{SearchText: query.SearchText}
	var err error
	if filters.GroupID, err = util.OptionalUUID(query.GroupID); err != nil {
		return respondWithError(err, "invalid group_id", values.BadRequestBody, &tc)
	}
	if filters.SenderMemberID, err = util.OptionalUUID(query.SenderMemberID); err != nil {
		return respondWithError(err, "invalid sender_member_id", values.BadRequestBody, &tc)
	}
	if filters.ReceiverMemberID, err = util.OptionalUUID(query.ReceiverMemberID); err != nil {
		return respondWithError(err, "invalid receiver_member_id", values.BadRequestBody, &tc)
	}
	if query.Status != "" {
		status := model.PaymentStatus(query.Status)
		filters.Status = &status
	}

	page, status, message, err := api.SearchGroupPaymentTransactionsHelper(r.Context(), query.SearchParams, filters)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, page)
}

func (api *API) GetGroupPaymentTransactionHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group payment transaction id", values.BadRequestBody, &tc)
	}

	payment, status, message, err := api.GetGroupPaymentTransactionHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, payment)
}

func (api *API) UpdateGroupPaymentTransactionHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group payment transaction id", values.BadRequestBody, &tc)
	}

	var req model.UpdateGroupPaymentTransactionRequest
	if err := util.DecodeJSONBody(&tc, r.Body, &req); err != nil {
		return respondWithError(err, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, validationMessage(err), values.BadRequestBody, &tc)
	}

	payment, status, message, err := api.UpdateGroupPaymentTransactionHelper(r.Context(), id, req)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, payment)
}

func (api *API) DeleteGroupPaymentTransactionHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group payment transaction id", values.BadRequestBody, &tc)
	}

	payment, status, message, err := api.DeleteGroupPaymentTransactionHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, payment)
}

func (api *API) ArchiveGroupPaymentTransactionHandler(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := tracing.FromContext(r.Context())

	id, err := uuidParam(r, "id")
	if err != nil {
		return respondWithError(err, "invalid group payment transaction id", values.BadRequestBody, &tc)
	}

	payment, status, message, err := api.ArchiveGroupPaymentTransactionHelper(r.Context(), id)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}
	return success(status, message, payment)
}
