package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
)

const groupPaymentColumns = `id, created_at, updated_at, deleted_at, amount, description, status, group_id,
	sender_member_id, receiver_member_id`

const groupPaymentNotFound = "Group payment transaction not found."

var groupPaymentSortable = map[string]bool{
	"created_at": true, "updated_at": true, "deleted_at": true, "amount": true, "status": true,
}

func scanGroupPayment(row pgx.Row) (model.GroupPaymentTransaction, error) {
	var p model.GroupPaymentTransaction
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.Amount, &p.Description,
		&p.Status, &p.GroupID, &p.SenderMemberID, &p.ReceiverMemberID,
	)
	return p, err
}

func (s *Store) CreateGroupPaymentTransaction(ctx context.Context, q db.Querier, values model.CreateGroupPaymentTransaction) (model.GroupPaymentTransaction, error) {
	status := values.Status
	if status == "" {
		status = model.PaymentRequested
	}

	query := fmt.Sprintf(`
		INSERT INTO group_payment_transactions (amount, description, status, group_id, sender_member_id, receiver_member_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, groupPaymentColumns)

	payment, err := scanGroupPayment(q.QueryRow(ctx, query,
		values.Amount, values.Description, status, values.GroupID, values.SenderMemberID, values.ReceiverMemberID,
	))
	if err != nil {
		return model.GroupPaymentTransaction{}, translate(err, groupPaymentNotFound, "creating group payment transaction")
	}
	return payment, nil
}

func (s *Store) GetGroupPaymentTransaction(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupPaymentTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM group_payment_transactions WHERE id = $1`, groupPaymentColumns)

	payment, err := scanGroupPayment(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.GroupPaymentTransaction{}, translate(err, groupPaymentNotFound, "getting group payment transaction")
	}
	return payment, nil
}

func (s *Store) UpdateGroupPaymentTransaction(ctx context.Context, q db.Querier, id uuid.UUID, values model.UpdateGroupPaymentTransaction) (model.GroupPaymentTransaction, error) {
	var b updateBuilder
	if values.Amount != nil {
		b.set("amount", *values.Amount)
	}
	if values.Description != nil {
		b.set("description", *values.Description)
	}
	if values.Status != nil {
		b.set("status", *values.Status)
	}

	query := fmt.Sprintf(`UPDATE group_payment_transactions SET %s WHERE id = %s RETURNING %s`, b.clause(), b.arg(id), groupPaymentColumns)

	payment, err := scanGroupPayment(q.QueryRow(ctx, query, b.args...))
	if err != nil {
		return model.GroupPaymentTransaction{}, translate(err, groupPaymentNotFound, "updating group payment transaction")
	}
	return payment, nil
}

func (s *Store) DeleteGroupPaymentTransaction(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupPaymentTransaction, error) {
	query := fmt.Sprintf(`DELETE FROM group_payment_transactions WHERE id = $1 RETURNING %s`, groupPaymentColumns)

	payment, err := scanGroupPayment(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.GroupPaymentTransaction{}, translate(err, groupPaymentNotFound, "deleting group payment transaction")
	}
	return payment, nil
}

func (s *Store) ArchiveGroupPaymentTransaction(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupPaymentTransaction, error) {
	query := fmt.Sprintf(`
		UPDATE group_payment_transactions SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, groupPaymentColumns)

	payment, err := scanGroupPayment(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.GroupPaymentTransaction{}, translate(err, groupPaymentNotFound, "archiving group payment transaction")
	}
	return payment, nil
}

func groupPaymentSearchWhere(params model.SearchParams, filters model.GroupPaymentTransactionSearchFilters) *whereBuilder {
	w := &whereBuilder{}
	w.activeOnly(params.IncludeArchived)
	if filters.SearchText != "" {
		w.add("description ILIKE " + w.arg(likePattern(filters.SearchText)))
	}
	if filters.GroupID != nil {
		w.add("group_id = " + w.arg(*filters.GroupID))
	}
	if filters.SenderMemberID != nil {
		w.add("sender_member_id = " + w.arg(*filters.SenderMemberID))
	}
	if filters.ReceiverMemberID != nil {
		w.add("receiver_member_id = " + w.arg(*filters.ReceiverMemberID))
	}
	if filters.Status != nil {
		w.add("status = " + w.arg(*filters.Status))
	}
	return w
}

func (s *Store) SearchGroupPaymentTransactions(ctx context.Context, q db.Querier, params model.SearchParams, filters model.GroupPaymentTransactionSearchFilters) (model.Page[model.GroupPaymentTransaction], error) {
	w := groupPaymentSearchWhere(params, filters)
	pageQuery, countQuery, args := searchQueries("group_payment_transactions", groupPaymentColumns, w, groupPaymentSortable, params)
	return search(ctx, q, pageQuery, countQuery, args, scanGroupPayment, params, "searching group payment transactions")
}
