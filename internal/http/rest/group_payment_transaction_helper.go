package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util/values"
)

func (api *API) CreateGroupPaymentTransactionHelper(ctx context.Context, req model.CreateGroupPaymentTransactionRequest) (model.GroupPaymentTransaction, string, string, error) {
	payment, err := api.Deps.Store.CreateGroupPaymentTransaction(ctx, api.Deps.DB.Conn(), req.Values())
	if err != nil {
		status, message := helperError(err, "Failed to create group payment transaction")
		return model.GroupPaymentTransaction{}, status, message, err
	}
	return payment, values.Created, "Group payment transaction created successfully", nil
}

func (api *API) GetGroupPaymentTransactionHelper(ctx context.Context, id uuid.UUID) (model.GroupPaymentTransaction, string, string, error) {
	payment, err := api.Deps.Store.GetGroupPaymentTransaction(ctx, api.Deps.DB.Conn(), id)
	if err != nil {
		status, message := helperError(err, "Failed to get group payment transaction")
		return model.GroupPaymentTransaction{}, status, message, err
	}
	return payment, values.Success, "Group payment transaction returned successfully", nil
}

func (api *API) SearchGroupPaymentTransactionsHelper(ctx context.Context, params model.SearchParams, filters model.GroupPaymentTransactionSearchFilters) (model.Page[model.GroupPaymentTransaction], string, string, error) {
	page, err := api.Deps.Store.SearchGroupPaymentTransactions(ctx, api.Deps.DB.Conn(), params, filters)
	if err != nil {
		status, message := helperError(err, "Failed to search group payment transactions")
		return model.Page[model.GroupPaymentTransaction]{}, status, message, err
	}
	return page, values.Success, "Group payment transactions returned successfully", nil
}

func (api *API) UpdateGroupPaymentTransactionHelper(ctx context.Context, id uuid.UUID, req model.UpdateGroupPaymentTransactionRequest) (model.GroupPaymentTransaction, string, string, error) {
	payment, err := api.Deps.Store.UpdateGroupPaymentTransaction(ctx, api.Deps.DB.Conn(), id, req.Values())
	if err != nil {
		status, message := helperError(err, "Failed to update group payment transaction")
		return model.GroupPaymentTransaction{}, status, message, err
	}
	return payment, values.Success, "Group payment transaction updated successfully", nil
}

func (api *API) DeleteGroupPaymentTransactionHelper(ctx context.Context, id uuid.UUID) (model.GroupPaymentTransaction, string, string, error) {
	payment, err := api.Deps.Store.DeleteGroupPaymentTransaction(ctx, api.Deps.DB.Conn(), id)
	if err != nil {
		status, message := helperError(err, "Failed to delete group payment transaction")
		return model.GroupPaymentTransaction{}, status, message, err
	}
	return payment, values.Success, "Group payment transaction deleted successfully", nil
}

func (api *API) ArchiveGroupPaymentTransactionHelper(ctx context.Context, id uuid.UUID) (model.GroupPaymentTransaction, string, string, error) {
	payment, err := api.Deps.Store.ArchiveGroupPaymentTransaction(ctx, api.Deps.DB.Conn(), id)
	if err != nil {
		status, message := helperError(err, "Failed to archive group payment transaction")
		return model.GroupPaymentTransaction{}, status, message, err
	}
	return payment, values.Success, "Group payment transaction archived successfully", nil
}
