package main

import (
	"net/http"
	"strconv"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
	// maxPage keeps (page-1)*limit far from overflowing OFFSET.
	maxPage = 1_000_000
)

type pagination struct {
	page  int
	limit int
}

// parsePage reads page and limit from the query string. Missing or
// malformed values fall back to page 1 and the default limit; both are
// capped.
func parsePage(r *http.Request) pagination {
	p := pagination{page: 1, limit: defaultPageLimit}

	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		p.page = min(n, maxPage)
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		p.limit = min(n, maxPageLimit)
	}
	return p
}

func (p pagination) store() store.Page {
	return store.Page{Limit: p.limit, Offset: (p.page - 1) * p.limit}
}

func (p pagination) meta(total int) *response.Meta {
	return response.NewMeta(p.page, p.limit, total)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Field("id", "invalid", "id must be a positive integer")
	}
	return id, nil
}

// queryID reads an optional positive integer query parameter.
func queryID(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.Field(key, "invalid", key+" must be a positive integer")
	}
	return &id, nil
}

func queryDate(r *http.Request, key string) (*store.Date, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := store.ParseDate(raw)
	if err != nil {
		return nil, apperr.Field(key, "invalid_date", err.Error())
	}
	return &d, nil
}

func queryFlag(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "sim":
		return true
	}
	return false
}
