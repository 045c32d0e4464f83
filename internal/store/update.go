package store

import (
	"context"
	"fmt"
	"strings"
)

// Changes is a sparse change-set keyed by column name. A key that is
// present with a nil value sets the column to NULL.
type Changes map[string]any

// Has reports whether field is present, regardless of its value.
func (c Changes) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// Only returns the subset of c whose keys are in allowed.
func (c Changes) Only(allowed []string) Changes {
	out := make(Changes, len(allowed))
	for _, f := range allowed {
		if v, ok := c[f]; ok {
			out[f] = v
		}
	}
	return out
}

// BuildUpdate walks allowed in order and emits "column = $n" for every
// column present in changes, with args in matching order. Keys outside
// allowed are ignored. An empty result means there is nothing to update.
func BuildUpdate(changes Changes, allowed []string) ([]string, []any) {
	var (
		assignments []string
		args        []any
	)
	for _, field := range allowed {
		v, ok := changes[field]
		if !ok {
			continue
		}
		args = append(args, v)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", field, len(args)))
	}
	return assignments, args
}

// updateByID applies the whitelisted part of changes to the row with the
// given id and bumps updated_at.
func updateByID(ctx context.Context, q Queryer, table string, id int64, changes Changes, allowed []string) error {
	assignments, args := BuildUpdate(changes, allowed)
	if len(assignments) == 0 {
		return ErrNoChanges
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d`,
		table, strings.Join(assignments, ", "), len(args),
	)

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %d: %w", table, id, err)
	}
	return expectAffected(res, table, id)
}

func deleteByID(ctx context.Context, q Queryer, table string, id int64) error {
	res, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", table, id, err)
	}
	return expectAffected(res, table, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffecter, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s %d: %w", table, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
