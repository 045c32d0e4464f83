// Package validation checks request payloads with struct tags and turns
// failures into itemised field errors.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var (
	plateRe   = regexp.MustCompile(`(?i)^[A-Z]{3}-?(?:\d{4}|\d[A-Z]\d{2})$`)
	digitsRe  = regexp.MustCompile(`^\d+$`)
	invoiceRe = regexp.MustCompile(`^[\d.]+$`)
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"plate":    stringRule(plateRe.MatchString),
		"digits":   stringRule(digitsRe.MatchString),
		"invoice":  stringRule(invoiceRe.MatchString),
		"document": stringRule(ValidDocument),
	} {
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, fn)
	}

	return &Validator{v: v}
}

func stringRule(match func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return match(f.String())
	}
}

// ValidDocument accepts a CPF (11 digits) or CNPJ (14 digits) that is not
// a single repeated digit.
func ValidDocument(s string) bool {
	if len(s) != 11 && len(s) != 14 {
		return false
	}
	if !digitsRe.MatchString(s) {
		return false
	}
	return strings.Count(s, s[:1]) != len(s)
}

// Struct validates s and returns an *apperr.Error listing every failed
// field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(fmt.Errorf("validate %T: %w", s, err))
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    fe.Tag(),
		})
	}
	return apperr.Validation("invalid payload", fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "plate":
		return "must be a valid plate (AAA1234 or AAA1A23)"
	case "document":
		return "must be a CPF with 11 digits or a CNPJ with 14 digits"
	case "digits":
		return "must contain digits only"
	case "invoice":
		return "must contain digits and dots only"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "unique":
		return "must not repeat values"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Decode re-reads a normalised payload into dst and validates it. Type
// mismatches are reported as field errors. Unknown keys are rejected when
// strict is set.
func (v *Validator) Decode(payload map[string]any, dst any, strict bool) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return apperr.Validation("invalid payload")
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	return v.Struct(dst)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Field(typeErr.Field, "type", "must be of type "+typeErr.Type.String())
	}

	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return apperr.Field(field, "unknown", "is not a recognised field")
	}

	// Decode errors from custom types such as dates carry no field name.
	return apperr.Validation("invalid payload: " + msg)
}
