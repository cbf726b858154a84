package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pkgerrors "github.com/pkg/errors"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
)

const groupMemberColumns = `id, created_at, updated_at, deleted_at, percentage_share, exact_share, status, role,
	placeholder_assignee_name, user_id, group_id`

const groupMemberNotFound = "Group member not found."

var groupMemberSortable = map[string]bool{
	"created_at": true, "updated_at": true, "deleted_at": true, "status": true, "role": true,
	"placeholder_assignee_name": true,
}

func scanGroupMember(row pgx.Row) (model.GroupMember, error) {
	var m model.GroupMember
	err := row.Scan(
		&m.ID, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt, &m.PercentageShare, &m.ExactShare,
		&m.Status, &m.Role, &m.PlaceholderAssigneeName, &m.UserID, &m.GroupID,
	)
	return m, err
}

func (s *Store) CreateGroupMember(ctx context.Context, q db.Querier, values model.CreateGroupMember) (model.GroupMember, error) {
	role := values.Role
	if role == "" {
		role = model.RoleMember
	}
	status := values.Status
	if status == "" {
		status = model.StatusPending
	}

	query := fmt.Sprintf(`
		INSERT INTO group_members (group_id, user_id, role, status, percentage_share, exact_share, placeholder_assignee_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, groupMemberColumns)

	member, err := scanGroupMember(q.QueryRow(ctx, query,
		values.GroupID, values.UserID, role, status, values.PercentageShare, values.ExactShare,
		values.PlaceholderAssigneeName,
	))
	if err != nil {
		return model.GroupMember{}, translate(err, groupMemberNotFound, "creating group member")
	}
	return member, nil
}

// GetGroupMember returns the membership matching every populated field of lookup.
// When several rows match, a live (non-REJECTED) row wins over a rejected one,
// then the newest row wins.
func (s *Store) GetGroupMember(ctx context.Context, q db.Querier, lookup model.MemberLookup) (model.GroupMember, error) {
	if lookup.ID == nil && lookup.UserID == nil {
		return model.GroupMember{}, apperror.BadRequest("A member id or user id is required.")
	}

	w := &whereBuilder{}
	if lookup.ID != nil {
		w.add("id = " + w.arg(*lookup.ID))
	}
	if lookup.UserID != nil {
		w.add("user_id = " + w.arg(*lookup.UserID))
	}
	if lookup.GroupID != nil {
		w.add("group_id = " + w.arg(*lookup.GroupID))
	}
	w.activeOnly(!lookup.ActiveOnly)

	query := fmt.Sprintf(`SELECT %s FROM group_members %s ORDER BY (status = 'REJECTED'), created_at DESC, id LIMIT 1`, groupMemberColumns, w.clause())

	member, err := scanGroupMember(q.QueryRow(ctx, query, w.args...))
	if err != nil {
		return model.GroupMember{}, translate(err, groupMemberNotFound, "getting group member")
	}
	return member, nil
}

// ListGroupMembers returns every membership of a group, oldest first.
func (s *Store) ListGroupMembers(ctx context.Context, q db.Querier, groupID uuid.UUID) ([]model.GroupMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM group_members WHERE group_id = $1 ORDER BY created_at, id`, groupMemberColumns)

	rows, err := q.Query(ctx, query, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing group members")
	}
	defer rows.Close()

	var members []model.GroupMember
	for rows.Next() {
		member, err := scanGroupMember(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "listing group members")
		}
		members = append(members, member)
	}
	return members, pkgerrors.Wrap(rows.Err(), "listing group members")
}

// UpdateGroupMember applies a partial update. When groupID is set the row must
// also belong to that group, otherwise NotFound is returned.
func (s *Store) UpdateGroupMember(ctx context.Context, q db.Querier, id uuid.UUID, groupID *uuid.UUID, values model.UpdateGroupMember) (model.GroupMember, error) {
	var b updateBuilder
	if values.PercentageShare != nil {
		b.set("percentage_share", *values.PercentageShare)
	}
	if values.ExactShare != nil {
		b.set("exact_share", *values.ExactShare)
	}
	if values.Status != nil {
		b.set("status", *values.Status)
	}
	if values.Role != nil {
		b.set("role", *values.Role)
	}
	if values.PlaceholderAssigneeName != nil {
		b.set("placeholder_assignee_name", *values.PlaceholderAssigneeName)
	}
	if values.UserID != nil {
		b.set("user_id", *values.UserID)
	}

	sets := b.clause()
	where := "id = " + b.arg(id)
	if groupID != nil {
		where += " AND group_id = " + b.arg(*groupID)
	}

	query := fmt.Sprintf(`UPDATE group_members SET %s WHERE %s RETURNING %s`, sets, where, groupMemberColumns)

	member, err := scanGroupMember(q.QueryRow(ctx, query, b.args...))
	if err != nil {
		return model.GroupMember{}, translate(err, groupMemberNotFound, "updating group member")
	}
	return member, nil
}

// DeleteGroupMember hard deletes a membership, optionally scoped to a group.
func (s *Store) DeleteGroupMember(ctx context.Context, q db.Querier, id uuid.UUID, groupID *uuid.UUID) (model.GroupMember, error) {
	args := []any{id}
	where := "id = $1"
	if groupID != nil {
		args = append(args, *groupID)
		where += " AND group_id = $2"
	}

	query := fmt.Sprintf(`DELETE FROM group_members WHERE %s RETURNING %s`, where, groupMemberColumns)

	member, err := scanGroupMember(q.QueryRow(ctx, query, args...))
	if err != nil {
		return model.GroupMember{}, translate(err, groupMemberNotFound, "deleting group member")
	}
	return member, nil
}

func (s *Store) ArchiveGroupMember(ctx context.Context, q db.Querier, id uuid.UUID) (model.GroupMember, error) {
	query := fmt.Sprintf(`
		UPDATE group_members SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, groupMemberColumns)

	member, err := scanGroupMember(q.QueryRow(ctx, query, id))
	if err != nil {
		return model.GroupMember{}, translate(err, groupMemberNotFound, "archiving group member")
	}
	return member, nil
}

func (s *Store) SearchGroupMembers(ctx context.Context, q db.Querier, params model.SearchParams, filters model.GroupMemberSearchFilters) (model.Page[model.GroupMember], error) {
	w := &whereBuilder{}
	w.activeOnly(params.IncludeArchived)
	if filters.GroupID != nil {
		w.add("group_id = " + w.arg(*filters.GroupID))
	}
	if filters.UserID != nil {
		w.add("user_id = " + w.arg(*filters.UserID))
	}

	pageQuery, countQuery, args := searchQueries("group_members", groupMemberColumns, w, groupMemberSortable, params)
	return search(ctx, q, pageQuery, countQuery, args, scanGroupMember, params, "searching group members")
}

// ExpirePendingMembers rejects active PENDING memberships created before cutoff
// and returns the rows it changed.
func (s *Store) ExpirePendingMembers(ctx context.Context, q db.Querier, cutoff time.Time) ([]model.GroupMember, error) {
	query := fmt.Sprintf(`
		UPDATE group_members SET status = 'REJECTED', updated_at = NOW()
		WHERE status = 'PENDING' AND deleted_at IS NULL AND created_at < $1
		RETURNING %s
	`, groupMemberColumns)

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "expiring pending members")
	}
	defer rows.Close()

	var expired []model.GroupMember
	for rows.Next() {
		member, err := scanGroupMember(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "expiring pending members")
		}
		expired = append(expired, member)
	}
	return expired, pkgerrors.Wrap(rows.Err(), "expiring pending members")
}
