package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/service"
)

const maxBodyBytes = 1_048_576 // 1 MB

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &response.ErrorResponse{Message: message, Error: message})
}

// writeData wraps data in a successful envelope.
func writeData[T any](w http.ResponseWriter, status int, message string, data T) {
	resp := &response.APIResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
	if err := writeJSON(w, status, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func writeList[T any](w http.ResponseWriter, message string, data []T, meta *response.Meta) {
	if data == nil {
		data = []T{}
	}
	resp := &response.APIResponse[[]T]{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(data); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("body must contain a single JSON value")
	}
	return nil
}

// readPayload decodes the body as a JSON object. Services decide which
// keys they accept.
func readPayload(w http.ResponseWriter, r *http.Request) (service.Payload, error) {
	var payload service.Payload
	err := readJSON(w, r, &payload)

	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return nil, apperr.Validation("request body is empty")
	case errors.As(err, &maxErr):
		return nil, apperr.Validation(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	case err != nil:
		return nil, apperr.Validation("request body must be a JSON object: " + err.Error())
	case payload == nil:
		return nil, apperr.Validation("request body must be a JSON object")
	}
	return payload, nil
}
