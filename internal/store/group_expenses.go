package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
)

const groupExpenseColumns = `id, created_at, updated_at, deleted_at, amount, expense_date, description, tag, group_id, member_id`

const groupExpenseNotFound = "Group expense not found."

var groupExpenseSortable = map[string]bool{
	"created_at": true, "updated_at": true, "deleted_at": true, "amount": true, "expense_date": true, "tag": true,
}

func scanGroupExpense(row pgx.Row) (model.GroupExpense, error) {
	var e model.GroupExpense
	err := row.Scan(
		&e.ID, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt, &e.Amount, &e.ExpenseDate,
		&e.Description, &e.Tag, &e.GroupID, &e.MemberID,
	)
	return e, err
}

func (s *Store) CreateGroupExpense(ctx context.Context, q db.Querier, values model.CreateGroupExpense) (model.GroupExpense, error) {
	query := fmt.Sprintf(`
		INSERT INTO group_expenses (amount, expense_date, description, tag, group_id, member_id)
		VALUES ($1, COALESCE($2, NOW()), $3, $4, $5, $6)
		RETURNING %s
	`, groupExpenseColumns)

	expense, err := scanGroupExpense(q.QueryRow(ctx, query,
		values.Amount, values.ExpenseDate, values.Description, values.Tag, values.GroupID, values.MemberID,
	))
	if err != nil {
		return model.GroupExpense{}, translate(err, groupExpenseNotFound, "creating group expense")
	}
	return expense, nil
}

func (s *Store) GetGroupExpense(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupExpense, error) {
	query := fmt.Sprintf(`SELECT %s FROM group_expenses WHERE id = $1`, groupExpenseColumns)

	expense, err := scanGroupExpense(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.GroupExpense{}, translate(err, groupExpenseNotFound, "getting group expense")
	}
	return expense, nil
}

func (s *Store) UpdateGroupExpense(ctx context.Context, q db.Querier, id uuid.UUID, values model.UpdateGroupExpense) (model.GroupExpense, error) {
	var b updateBuilder
	if values.Amount != nil {
		b.set("amount", *values.Amount)
	}
	if values.ExpenseDate != nil {
		b.set("expense_date", *values.ExpenseDate)
	}
	if values.Description != nil {
		b.set("description", *values.Description)
	}
	if values.Tag != nil {
		b.set("tag", *values.Tag)
	}
	if values.MemberID != nil {
		b.set("member_id", *values.MemberID)
	}

	query := fmt.Sprintf(`UPDATE group_expenses SET %s WHERE id = %s RETURNING %s`, b.clause(), b.arg(id), groupExpenseColumns)

	expense, err := scanGroupExpense(q.QueryRow(ctx, query, b.args...))
	if err != nil {
		return model.GroupExpense{}, translate(err, groupExpenseNotFound, "updating group expense")
	}
	return expense, nil
}

func (s *Store) DeleteGroupExpense(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupExpense, error) {
	query := fmt.Sprintf(`DELETE FROM group_expenses WHERE id = $1 RETURNING %s`, groupExpenseColumns)

	expense, err := scanGroupExpense(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.GroupExpense{}, translate(err, groupExpenseNotFound, "deleting group expense")
	}
	return expense, nil
}

func (s *Store) ArchiveGroupExpense(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupExpense, error) {
	query := fmt.Sprintf(`
		UPDATE group_expenses SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, groupExpenseColumns)

	expense, err := scanGroupExpense(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.GroupExpense{}, translate(err, groupExpenseNotFound, "archiving group expense")
	}
	return expense, nil
}

func groupExpenseSearchWhere(params model.SearchParams, filters model.GroupExpenseSearchFilters) *whereBuilder {
	w := &whereBuilder{}
	w.activeOnly(params.IncludeArchived)
	w.add("group_id = " + w.arg(filters.GroupID))
	if filters.SearchText != "" {
		pattern := w.arg(likePattern(filters.SearchText))
		w.add(fmt.Sprintf("(description ILIKE %s OR tag ILIKE %s)", pattern, pattern))
	}
	if filters.StartDate != nil {
		w.add("expense_date >= " + w.arg(*filters.StartDate))
	}
	if filters.EndDate != nil {
		w.add("expense_date <= " + w.arg(*filters.EndDate))
	}
	return w
}

func (s *Store) SearchGroupExpenses(ctx context.Context, q db.Querier, params model.SearchParams, filters model.GroupExpenseSearchFilters) (model.Page[model.GroupExpense], error) {
	w := groupExpenseSearchWhere(params, filters)
	pageQuery, countQuery, args := searchQueries("group_expenses", groupExpenseColumns, w, groupExpenseSortable, params)
	return search(ctx, q, pageQuery, countQuery, args, scanGroupExpense, params, "searching group expenses")
}
