package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util/values"
)

func (api *API) CreateGroupExpenseHelper(ctx context.Context, req model.CreateGroupExpenseRequest) (model.GroupExpense, string, string, error) {
	expense, err := api.Deps.Store.CreateGroupExpense(ctx, api.Deps.DB.Conn(), req.Values())
	if err != nil {
		status, message := helperError(err, "Failed to create group expense")
		return model.GroupExpense{}, status, message, err
	}
	return expense, values.Created, "Group expense created successfully", nil
}

func (api *API) GetGroupExpenseHelper(ctx context.Context, id uuid.UUID) (model.GroupExpense, string, string, error) {
	expense, err := api.Deps.Store.GetGroupExpense(ctx, api.Deps.DB.Conn(), id)
	if err != nil {
		status, message := helperError(err, "Failed to get group expense")
		return model.GroupExpense{}, status, message, err
	}
	return expense, values.Success, "Group expense returned successfully", nil
}

func (api *API) SearchGroupExpensesHelper(ctx context.Context, params model.SearchParams, filters model.GroupExpenseSearchFilters) (model.Page[model.GroupExpense], string, string, error) {
	page, err := api.Deps.Store.SearchGroupExpenses(ctx, api.Deps.DB.Conn(), params, filters)
	if err != nil {
		status, message := helperError(err, "Failed to search group expenses")
		return model.Page[model.GroupExpense]{}, status, message, err
	}
	return page, values.Success, "Group expenses returned successfully", nil
}

func (api *API) UpdateGroupExpenseHelper(ctx context.Context, id uuid.UUID, req model.UpdateGroupExpenseRequest) (model.GroupExpense, string, string, error) {
	expense, err := api.Deps.Store.UpdateGroupExpense(ctx, api.Deps.DB.Conn(), id, req.Values())
	if err != nil {
		status, message := helperError(err, "Failed to update group expense")
		return model.GroupExpense{}, status, message, err
	}
	return expense, values.Success, "Group expense updated successfully", nil
}

func (api *API) DeleteGroupExpenseHelper(ctx context.Context, id uuid.UUID) (model.GroupExpense, string, string, error) {
	expense, err := api.Deps.Store.DeleteGroupExpense(ctx, api.Deps.DB.Conn(), id)
	if err != nil {
		status, message := helperError(err, "Failed to delete group expense")
		return model.GroupExpense{}, status, message, err
	}
	return expense, values.Success, "Group expense deleted successfully", nil
}

func (api *API) ArchiveGroupExpenseHelper(ctx context.Context, id uuid.UUID) (model.GroupExpense, string, string, error) {
	expense, err := api.Deps.Store.ArchiveGroupExpense(ctx, api.Deps.DB.Conn(), id)
	if err != nil {
		status, message := helperError(err, "Failed to archive group expense")
		return model.GroupExpense{}, status, message, err
	}
	return expense, values.Success, "Group expense archived successfully", nil
}
