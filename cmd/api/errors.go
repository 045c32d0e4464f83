package main

import (
	"net/http"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/response"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindBusinessRule: http.StatusBadRequest,
	apperr.KindSchemaDrift:  http.StatusBadRequest,
	apperr.KindInternal:     http.StatusInternalServerError,
}

// writeError maps err to its status and envelope. Internal details are
// logged and never returned to the client.
func (app *application) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}

	status, ok := kindStatus[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	switch {
	case status >= http.StatusInternalServerError:
		app.logger.Error(component, "%s %s: %v", r.Method, r.URL.Path, err)
	case e.Kind == apperr.KindSchemaDrift:
		app.logger.Error(component, "%s %s: database schema drift, run migrations: %v", r.Method, r.URL.Path, err)
	default:
		app.logger.Debug(component, "%s %s: %v", r.Method, r.URL.Path, err)
	}

	resp := &response.ErrorResponse{
		Message: e.Message,
		Error:   e.Message,
		Code:    e.Code,
		Errors:  e.Fields,
	}
	if err := writeJSON(w, status, resp); err != nil {
		app.logger.Warn(component, "failed to write error response: %v", err)
	}
}
