// Package store holds the persistence accessors: one method per entity per
// operation. Every method takes the db.Querier it runs against, so callers
// decide whether a sequence of calls shares a transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/db"
	"github.com/bwise1/groupsplit_api/internal/model"
)

// Postgres error codes the accessors translate.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

type Store struct{}

func New() *Store {
	return &Store{}
}

// translate converts driver errors into apperror kinds. notFound is the
// message used when the statement matched no row.
func translate(err error, notFound, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return apperror.Conflict("A conflicting record already exists.", err)
		case foreignKeyViolation:
			return &apperror.Error{Kind: apperror.KindBadRequest, Message: "A referenced record does not exist.", Err: err}
		case checkViolation:
			return &apperror.Error{Kind: apperror.KindBadRequest, Message: "A value is outside the allowed set.", Err: err}
		}
	}

	return pkgerrors.Wrap(err, op)
}

// updateBuilder accumulates SET clauses and their positional arguments.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) arg(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *updateBuilder) set(column string, value any) {
	b.sets = append(b.sets, fmt.Sprintf("%s = %s", column, b.arg(value)))
}

func (b *updateBuilder) setExpr(column, expr string) {
	b.sets = append(b.sets, fmt.Sprintf("%s = %s", column, expr))
}

func (b *updateBuilder) clause() string {
	return strings.Join(append(b.sets, "updated_at = NOW()"), ", ")
}

// whereBuilder accumulates AND-ed conditions and their positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) arg(value any) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) activeOnly(includeArchived bool) {
	if !includeArchived {
		w.add("deleted_at IS NULL")
	}
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// orderClause resolves the requested sort against a whitelist of columns,
// falling back to created_at and descending order.
func orderClause(sortable map[string]bool, p model.SearchParams) string {
	column := "created_at"
	if sortable[p.SortBy] {
		column = p.SortBy
	}
	direction := "DESC"
	if p.OrderBy == model.OrderAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", column, direction, direction)
}

// searchQueries renders the page and count statements for a search.
func searchQueries(table, columns string, w *whereBuilder, sortable map[string]bool, p model.SearchParams) (string, string, []any) {
	where := w.clause()
	args := append([]any{}, w.args...)
	limit := len(args) + 1
	offset := len(args) + 2
	args = append(args, p.Limit, p.Offset())

	pageQuery := fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT $%d OFFSET $%d",
		columns, table, where, orderClause(sortable, p), limit, offset)
	countQuery := fmt.Sprintf("SELECT COUNT(id) FROM %s %s", table, where)
	return pageQuery, countQuery, args
}

func likePattern(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(text) + "%"
}

func search[T any](ctx context.Context, q db.Querier, pageQuery, countQuery string, args []any,
	scan func(pgx.Row) (T, error), p model.SearchParams, op string) (model.Page[T], error) {
	rows, err := q.Query(ctx, pageQuery, args...)
	if err != nil {
		return model.Page[T]{}, pkgerrors.Wrap(err, op)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		record, err := scan(rows)
		if err != nil {
			return model.Page[T]{}, pkgerrors.Wrap(err, op)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return model.Page[T]{}, pkgerrors.Wrap(err, op)
	}

	var total int
	countArgs := args[:len(args)-2]
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.Page[T]{}, pkgerrors.Wrap(err, op)
	}

	return model.NewPage(records, total, p.Limit, p.Page), nil
}
