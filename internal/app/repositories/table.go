package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
)

// psql is the statement builder shared by every repository.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ListOptions narrows and orders a Query.
type ListOptions struct {
	Where   squirrel.Sqlizer
	OrderBy []string
	Limit   uint64
	Offset  uint64
}

// Table is a gateway over one table whose rows decode into T by `db` tags.
// Every table is expected to have a bigint "id" primary key.
type Table[T any] struct {
	db         db.DBTX
	name       string
	entity     string
	hasUpdated bool
}

// NewTable creates a gateway. entity names the row kind in error messages.
// When touchUpdatedAt is set, updates also set updated_at = now().
func NewTable[T any](conn db.DBTX, name, entity string, touchUpdatedAt bool) *Table[T] {
	return &Table[T]{db: conn, name: name, entity: entity, hasUpdated: touchUpdatedAt}
}

// WithDB returns a copy of the gateway bound to conn, typically a transaction.
func (t *Table[T]) WithDB(conn db.DBTX) *Table[T] {
	cp := *t
	cp.db = conn
	return &cp
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) notFound() error {
	return apperrors.NewResourceNotFoundError(t.entity + " not found")
}

// Query returns all rows matching opts.
func (t *Table[T]) Query(ctx context.Context, opts ListOptions) ([]T, error) {
	q := psql.Select("*").From(t.name)
	if opts.Where != nil {
		q = q.Where(opts.Where)
	}
	if len(opts.OrderBy) > 0 {
		q = q.OrderBy(opts.OrderBy...)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return selectRows[T](ctx, t.db, q)
}

// QueryOne returns the single row matching where, or a not-found error.
func (t *Table[T]) QueryOne(ctx context.Context, where squirrel.Sqlizer) (*T, error) {
	return selectOne[T](ctx, t.db, psql.Select("*").From(t.name).Where(where).Limit(1), t.notFound)
}

// GetByID returns the row with the given id.
func (t *Table[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	return t.QueryOne(ctx, squirrel.Eq{"id": id})
}

// Insert writes fields as a new row and returns it.
func (t *Table[T]) Insert(ctx context.Context, fields map[string]interface{}) (*T, error) {
	q := psql.Insert(t.name).SetMap(fields).Suffix("RETURNING *")
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert into %s: %w", t.name, err)
	}

	rows, err := t.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.AsConstraintViolation(err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", t.name, dberrors.AsConstraintViolation(err))
	}
	return row, nil
}

// Update overwrites fields of the row with the given id and returns the new row.
// Concurrent writers are not detected; the last write wins.
func (t *Table[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) (*T, error) {
	return t.UpdateGuarded(ctx, id, nil, fields)
}

// UpdateIfUnchanged is Update with an optimistic precondition: the stored
// updated_at must still equal expected, otherwise ErrConflict is returned.
func (t *Table[T]) UpdateIfUnchanged(ctx context.Context, id int64, fields map[string]interface{}, expected time.Time) (*T, error) {
	return t.UpdateGuarded(ctx, id, squirrel.Eq{"updated_at": expected}, fields)
}

// statusGuard matches a row still in status from and, when expected is set,
// still carrying that updated_at.
func statusGuard(from string, expected *time.Time) squirrel.Sqlizer {
	guard := squirrel.And{squirrel.Eq{"status": from}}
	if expected != nil {
		guard = append(guard, squirrel.Eq{"updated_at": *expected})
	}
	return guard
}

// UpdateGuarded updates the row only if guard also holds. A row that exists but
// fails the guard yields ErrConflict; a missing row yields not found.
func (t *Table[T]) UpdateGuarded(ctx context.Context, id int64, guard squirrel.Sqlizer, fields map[string]interface{}) (*T, error) {
	if len(fields) == 0 && !t.hasUpdated {
		return t.GetByID(ctx, id)
	}

	q := psql.Update(t.name).SetMap(fields).Where(squirrel.Eq{"id": id})
	if t.hasUpdated {
		if _, ok := fields["updated_at"]; !ok {
			q = q.Set("updated_at", squirrel.Expr("now()"))
		}
	}
	if guard != nil {
		q = q.Where(guard)
	}

	sql, args, err := q.Suffix("RETURNING *").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update of %s: %w", t.name, err)
	}

	rows, err := t.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberrors.AsConstraintViolation(err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update of %s: %w", t.name, dberrors.AsConstraintViolation(err))
	}

	if guard == nil {
		return nil, t.notFound()
	}
	exists, err := t.Exists(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, t.notFound()
	}
	return nil, apperrors.NewConflictError(t.entity + " was changed by someone else; reload and try again")
}

// Delete removes the row with the given id.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	n, err := t.DeleteWhere(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return t.notFound()
	}
	return nil
}

// DeleteWhere removes every row matching where and reports how many went.
func (t *Table[T]) DeleteWhere(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	sql, args, err := psql.Delete(t.name).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete from %s: %w", t.name, err)
	}
	tag, err := t.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, dberrors.AsConstraintViolation(err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of rows matching where; nil counts everything.
func (t *Table[T]) Count(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	q := psql.Select("COUNT(*)").From(t.name)
	if where != nil {
		q = q.Where(where)
	}
	return scalar[int64](ctx, t.db, q)
}

// Exists reports whether any row matches where.
func (t *Table[T]) Exists(ctx context.Context, where squirrel.Sqlizer) (bool, error) {
	inner := psql.Select("1").From(t.name).Where(where).Limit(1)
	return scalar[bool](ctx, t.db, inner.Prefix("SELECT EXISTS(").Suffix(")"))
}

// selectRows runs q and decodes every row into T.
func selectRows[T any](ctx context.Context, conn db.DBTX, q squirrel.Sqlizer) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to scan rows: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// selectOne runs q and decodes exactly one row, calling notFound when there is none.
func selectOne[T any](ctx context.Context, conn db.DBTX, q squirrel.Sqlizer, notFound func() error) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return row, nil
}

// scalar runs a single-column, single-row query.
func scalar[V any](ctx context.Context, conn db.DBTX, q squirrel.Sqlizer) (V, error) {
	var v V
	sql, args, err := q.ToSql()
	if err != nil {
		return v, fmt.Errorf("failed to build query: %w", err)
	}
	if err := conn.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		return v, fmt.Errorf("query failed: %w", err)
	}
	return v, nil
}
