package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pkgerrors "github.com/pkg/errors"

	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
)

const groupColumns = `id, created_at, updated_at, deleted_at, name, description, tag, split_type, settlement_summary`

const groupNotFound = "Group not found."

var groupSortable = map[string]bool{
	"created_at": true, "updated_at": true, "deleted_at": true, "name": true, "split_type": true, "tag": true,
}

func scanGroup(row pgx.Row) (model.Group, error) {
	var g model.Group
	err := row.Scan(
		&g.ID, &g.CreatedAt, &g.UpdatedAt, &g.DeletedAt, &g.Name, &g.Description,
		&g.Tag, &g.SplitType, &g.SettlementSummary,
	)
	return g, err
}

func (s *Store) CreateGroup(ctx context.Context, q db.Querier, values model.CreateGroup) (model.Group, error) {
	splitType := values.SplitType
	if splitType == "" {
		splitType = model.SplitTypeEqual
	}

	query := fmt.Sprintf(`
		INSERT INTO groups (name, description, tag, split_type, settlement_summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, groupColumns)

	group, err := scanGroup(q.QueryRow(ctx, query,
		values.Name, values.Description, values.Tag, splitType, values.SettlementSummary,
	))
	if err != nil {
		return model.Group{}, translate(err, groupNotFound, "creating group")
	}
	return group, nil
}

func (s *Store) GetGroup(ctx context.Context, q db.Querier, id uuid.UUID) (model.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups WHERE id = $1`, groupColumns)

	group, err := scanGroup(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.Group{}, translate(err, groupNotFound, "getting group")
	}
	return group, nil
}

func (s *Store) UpdateGroup(ctx context.Context, q db.Querier, id uuid.UUID, values model.UpdateGroup) (model.Group, error) {
	var b updateBuilder
	if values.Name != nil {
		b.set("name", *values.Name)
	}
	if values.Description != nil {
		b.set("description", *values.Description)
	}
	if values.Tag != nil {
		b.set("tag", *values.Tag)
	}
	if values.SplitType != nil {
		b.set("split_type", *values.SplitType)
	}
	if values.SettlementSummary != nil {
		b.set("settlement_summary", values.SettlementSummary)
	}

	query := fmt.Sprintf(`UPDATE groups SET %s WHERE id = %s RETURNING %s`, b.clause(), b.arg(id), groupColumns)

	group, err := scanGroup(q.QueryRow(ctx, query, b.args...))
	if err != nil {
		return model.Group{}, translate(err, groupNotFound, "updating group")
	}
	return group, nil
}

// SetGroupArchived stamps deleted_at with the server time, or clears it.
func (s *Store) SetGroupArchived(ctx context.Context, q db.Querier, id uuid.UUID, archived bool) (model.Group, error) {
	var b updateBuilder
	if archived {
		b.setExpr("deleted_at", "NOW()")
	} else {
		b.setExpr("deleted_at", "NULL")
	}

	query := fmt.Sprintf(`UPDATE groups SET %s WHERE id = %s RETURNING %s`, b.clause(), b.arg(id), groupColumns)

	group, err := scanGroup(q.QueryRow(ctx, query, b.args...))
	if err != nil {
		return model.Group{}, translate(err, groupNotFound, "archiving group")
	}
	return group, nil
}

func (s *Store) DeleteGroup(ctx context.Context, q db.Querier, id uuid.UUID) (model.Group, error) {
	query := fmt.Sprintf(`DELETE FROM groups WHERE id = $1 RETURNING %s`, groupColumns)

	group, err := scanGroup(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.Group{}, translate(err, groupNotFound, "deleting group")
	}
	return group, nil
}

func groupSearchWhere(params model.SearchParams, filters model.GroupSearchFilters) *whereBuilder {
	w := &whereBuilder{}
	w.activeOnly(params.IncludeArchived)
	if filters.SearchText != "" {
		pattern := w.arg(likePattern(filters.SearchText))
		w.add(fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", pattern, pattern))
	}
	return w
}

func (s *Store) SearchGroups(ctx context.Context, q db.Querier, params model.SearchParams, filters model.GroupSearchFilters) (model.Page[model.Group], error) {
	w := groupSearchWhere(params, filters)
	pageQuery, countQuery, args := searchQueries("groups", groupColumns, w, groupSortable, params)
	return search(ctx, q, pageQuery, countQuery, args, scanGroup, params, "searching groups")
}

// CountUserOwnedGroups counts non-archived groups in which the user holds an
// active OWNER membership.
func (s *Store) CountUserOwnedGroups(ctx context.Context, q db.Querier, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(g.id)
		FROM group_members gm
		INNER JOIN groups g ON g.id = gm.group_id
		WHERE gm.user_id = $1
		  AND gm.role = 'OWNER'
		  AND gm.deleted_at IS NULL
		  AND g.deleted_at IS NULL
	`

	var count int
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, pkgerrors.Wrap(err, "counting owned groups")
	}
	return count, nil
}
