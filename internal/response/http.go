package response

import "github.com/farxc/gestao-fretes/internal/apperr"

type APIResponse[T any] struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    T                   `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    string              `json:"code,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Meta    *Meta               `json:"meta,omitempty"`
}

type ErrorResponse = APIResponse[any]

// Meta describes one page of a list.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewMeta reports at least one page, even for an empty list.
func NewMeta(page, limit, total int) *Meta {
	pages := 1
	if limit > 0 && total > limit {
		pages = (total + limit - 1) / limit
	}
	return &Meta{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
