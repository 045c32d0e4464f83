// Package apperr defines the error kinds surfaced by the services and
// translated to HTTP statuses by the API.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindBusinessRule
	KindSchemaDrift
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeBusinessRule     = "BUSINESS_RULE"
	CodeSchemaOutdated   = "DB_SCHEMA_OUTDATED"
	CodeSchemaError      = "DB_SCHEMA_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNoFieldsToUpdate = "NO_FIELDS_TO_UPDATE"
)

// FieldError describes a single rejected field of a payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message, Fields: fields}
}

// Field builds a validation error for a single field.
func Field(field, code, message string) *Error {
	return Validation(message, FieldError{Field: field, Message: message, Code: code})
}

func NoChanges() *Error {
	return &Error{Kind: KindValidation, Code: CodeNoFieldsToUpdate, Message: "no valid fields to update"}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Message: message, Err: err}
}

func Rule(format string, args ...any) *Error {
	return &Error{Kind: KindBusinessRule, Code: CodeBusinessRule, Message: fmt.Sprintf(format, args...)}
}

func SchemaDrift(code, message string, err error) *Error {
	return &Error{Kind: KindSchemaDrift, Code: code, Message: message, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal server error", Err: err}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; errors that are not *Error are internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
