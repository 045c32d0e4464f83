package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
)

type SequenceStore struct {
	db Queryer
}

// codeColumns lists the tables whose generated code column MaxCode may
// scan.
var codeColumns = map[string]string{
	"frota":      "codigo",
	"motoristas": "codigo",
	"fretes":     "codigo_frete",
	"pagamentos": "codigo_pagamento",
	"fazendas":   "codigo",
	"anexos":     "codigo",
}

// Allocate increments the counter for scope and returns the new value.
// The first allocation of a scope returns 1.
func (s *SequenceStore) Allocate(ctx context.Context, scope string) (int64, error) {
	query := `INSERT INTO sequencias (escopo, valor) VALUES ($1, 1)
	ON CONFLICT (escopo) DO UPDATE SET valor = sequencias.valor + 1, updated_at = NOW()
	RETURNING valor`

	var value int64
	if err := sqlx.GetContext(ctx, s.db, &value, query, scope); err != nil {
		return 0, fmt.Errorf("failed to allocate sequence %s: %w", scope, err)
	}
	return value, nil
}

// Raise moves the counter for scope up to atLeast; it never lowers it.
func (s *SequenceStore) Raise(ctx context.Context, scope string, atLeast int64) error {
	query := `INSERT INTO sequencias (escopo, valor) VALUES ($1, $2)
	ON CONFLICT (escopo) DO UPDATE SET valor = GREATEST(sequencias.valor, EXCLUDED.valor), updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, scope, atLeast); err != nil {
		return fmt.Errorf("failed to raise sequence %s: %w", scope, err)
	}
	return nil
}

// MaxCode returns the highest code in table made of prefix followed only
// by digits, or "" when none exists. Fallback codes such as
// FROTA-<millis>-NNNNN never match. Longer codes sort first so "-1000"
// beats "-999".
func (s *SequenceStore) MaxCode(ctx context.Context, table, column, prefix string) (string, error) {
	if codeColumns[table] != column {
		return "", fmt.Errorf("no code column %s.%s", table, column)
	}

	query := fmt.Sprintf(
		`SELECT COALESCE((SELECT %[2]s FROM %[1]s WHERE %[2]s LIKE $1 AND %[2]s ~ $2
			ORDER BY LENGTH(%[2]s) DESC, %[2]s DESC LIMIT 1), '')`,
		table, column,
	)

	var code string
	if err := sqlx.GetContext(ctx, s.db, &code, query, prefix+"%", sequentialPattern(prefix)); err != nil {
		return "", fmt.Errorf("failed to read max code of %s: %w", table, err)
	}
	return code, nil
}

func sequentialPattern(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix) + "[0-9]+$"
}

// SequentialCode reports whether code is prefix followed by one or more
// digits and nothing else.
func SequentialCode(code, prefix string) bool {
	rest, ok := strings.CutPrefix(code, prefix)
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}
