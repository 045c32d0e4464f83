package sequence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farxc/gestao-fretes/internal/logger"
)

// CounterStore is the persisted side of the counters.
type CounterStore interface {
	Allocator
	Raise(ctx context.Context, scope string, atLeast int64) error
	MaxCode(ctx context.Context, table, column, prefix string) (string, error)
}

// Target ties a kind to the table column holding its codes.
type Target struct {
	Kind   Kind
	Table  string
	Column string
}

var Targets = []Target{
	{Kind: Vehicle, Table: "frota", Column: "codigo"},
	{Kind: Driver, Table: "motoristas", Column: "codigo"},
	{Kind: Freight, Table: "fretes", Column: "codigo_frete"},
	{Kind: Payment, Table: "pagamentos", Column: "codigo_pagamento"},
	{Kind: Farm, Table: "fazendas", Column: "codigo"},
	{Kind: Attachment, Table: "anexos", Column: "codigo"},
}

func (t Target) codePrefix(year int) string {
	return t.Kind.Scope(year) + "-"
}

// Reconcile raises each counter of the current year to the largest code
// already stored, so codes written by the max-row scheme are never
// handed out again.
func Reconcile(ctx context.Context, s CounterStore, targets []Target, now time.Time, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	year := now.Year()

	for _, t := range targets {
		last, err := s.MaxCode(ctx, t.Table, t.Column, t.codePrefix(year))
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", t.Kind.Prefix, err)
		}
		if last == "" {
			continue
		}
		n, ok := numbered(last, t.codePrefix(year))
		if !ok {
			log.Warn(component, "skipping unparsable code %s in %s", last, t.Table)
			continue
		}
		if err := s.Raise(ctx, t.Kind.Scope(year), n); err != nil {
			return fmt.Errorf("reconcile %s: %w", t.Kind.Prefix, err)
		}
		log.Debug(component, "counter %s raised to at least %d", t.Kind.Scope(year), n)
	}
	return nil
}

// numbered parses the counter of code when it is prefix followed only by
// digits. Fallback codes carry a timestamp segment and are rejected.
func numbered(code, prefix string) (int64, bool) {
	rest, ok := strings.CutPrefix(code, prefix)
	if !ok || rest == "" || strings.Trim(rest, "0123456789") != "" {
		return 0, false
	}
	return Suffix(code)
}
