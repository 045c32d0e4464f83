package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// insertReturning runs a named INSERT ... RETURNING and scans the
// returned columns into dest.
func insertReturning(ctx context.Context, q Queryer, query string, arg any, dest ...any) error {
	bound, args, err := q.BindNamed(query, arg)
	if err != nil {
		return fmt.Errorf("failed to bind insert: %w", err)
	}
	return q.QueryRowxContext(ctx, bound, args...).Scan(dest...)
}

// getOne scans a single row, translating sql.ErrNoRows to ErrNotFound.
func getOne(ctx context.Context, q Queryer, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// selectPage counts the rows matched by where and loads one page of them.
// where may be empty; args bind its placeholders.
func selectPage(ctx context.Context, q Queryer, dest any, columns, table, where, orderBy string, page Page, args ...any) (int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, table, where)
	if err := sqlx.GetContext(ctx, q, &total, countQuery, args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		columns, table, where, orderBy, len(args)-1, len(args),
	)
	if err := sqlx.SelectContext(ctx, q, dest, query, args...); err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return total, nil
}
