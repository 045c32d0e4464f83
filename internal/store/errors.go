package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrNoChanges = errors.New("no valid fields to update")
)

// Postgres SQLSTATE codes the services react to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeUndefinedColumn     = "42703"
	codeUndefinedTable      = "42P01"
)

// Constraint names declared in schema.sql for the generated code columns.
const (
	ConstraintVehicleCode    = "frota_codigo_key"
	ConstraintDriverCode     = "motoristas_codigo_key"
	ConstraintFreightCode    = "fretes_codigo_frete_key"
	ConstraintPaymentCode    = "pagamentos_codigo_pagamento_key"
	ConstraintFarmCode       = "fazendas_codigo_key"
	ConstraintAttachmentCode = "anexos_codigo_key"
)

func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// IsUniqueViolation reports whether err is a unique violation. When
// constraints are given, the violated constraint must be one of them.
func IsUniqueViolation(err error, constraints ...string) bool {
	pqErr, ok := pqError(err)
	if !ok || pqErr.Code != codeUniqueViolation {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pqErr.Constraint == c {
			return true
		}
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == codeForeignKeyViolation
}

func IsNotNullViolation(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == codeNotNullViolation
}

func IsCheckViolation(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == codeCheckViolation
}

func IsUndefinedColumn(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == codeUndefinedColumn
}

func IsUndefinedTable(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == codeUndefinedTable
}

// ColumnOf returns the column named by a constraint error, when the
// server reported one.
func ColumnOf(err error) string {
	if pqErr, ok := pqError(err); ok {
		return pqErr.Column
	}
	return ""
}

// UniqueViolation builds the error the database returns for a duplicate
// key on constraint. In-memory storages use it to mirror Postgres.
func UniqueViolation(constraint string) error {
	return &pq.Error{
		Code:       codeUniqueViolation,
		Message:    "duplicate key value violates unique constraint \"" + constraint + "\"",
		Constraint: constraint,
	}
}

// ForeignKeyViolation mirrors a Postgres foreign key failure.
func ForeignKeyViolation(constraint string) error {
	return &pq.Error{
		Code:       codeForeignKeyViolation,
		Message:    "update or delete violates foreign key constraint \"" + constraint + "\"",
		Constraint: constraint,
	}
}
