// Package service orchestrates validation, the consistency rules and
// persistence for every entity. Writes touching more than one table run
// in a single transaction.
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/cache"
	"github.com/farxc/gestao-fretes/internal/logger"
	"github.com/farxc/gestao-fretes/internal/normalize"
	"github.com/farxc/gestao-fretes/internal/sequence"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/farxc/gestao-fretes/internal/uploads"
	"github.com/farxc/gestao-fretes/internal/validation"
	"github.com/shockerli/cvt"
)

const component = "Service"

// maxCodeAttempts bounds the retries of an insert whose generated code
// collided with an existing one.
const maxCodeAttempts = 3

// Payload is a decoded JSON request body keyed by column name.
type Payload = map[string]any

// FileStore keeps uploaded files.
type FileStore interface {
	Save(ctx context.Context, originalName, mimeType string, r io.Reader) (*uploads.File, error)
	Remove(name string) error
}

type Deps struct {
	Store     *store.Storage
	Validator *validation.Validator
	Cache     cache.Cache
	CacheTTL  time.Duration
	Files     FileStore
	Log       *logger.Logger
	Now       func() time.Time
}

type Services struct {
	Vehicles  *VehicleService
	Drivers   *DriverService
	Freights  *FreightService
	Costs     *CostService
	Payments  *PaymentService
	Farms     *FarmService
	Dashboard *DashboardService
}

func New(d Deps) *Services {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	b := base{
		store: d.Store,
		codes: sequence.NewGenerator(d.Store.Sequences, d.Log).WithClock(d.Now),
		v:     d.Validator,
		cache: d.Cache,
		log:   d.Log,
		now:   d.Now,
	}

	return &Services{
		Vehicles:  &VehicleService{b},
		Drivers:   &DriverService{b},
		Freights:  &FreightService{b},
		Costs:     &CostService{b},
		Payments:  &PaymentService{base: b, files: d.Files},
		Farms:     &FarmService{b},
		Dashboard: &DashboardService{base: b, ttl: d.CacheTTL},
	}
}

type base struct {
	store *store.Storage
	codes *sequence.Generator
	v     *validation.Validator
	cache cache.Cache
	log   *logger.Logger
	now   func() time.Time
}

// dropAggregates evicts the cached dashboard after a write that changes
// freights, costs, drivers or vehicles. Failures only cost freshness.
func (b base) dropAggregates(ctx context.Context) {
	if err := b.cache.Delete(ctx, KeyKPIs, KeyRouteStats); err != nil {
		b.log.Warn(component, "dashboard cache eviction failed: %v", err)
	}
}

// withCode runs insert with a freshly generated code and retries with a
// new one while the insert fails on the code's unique constraint.
func (b base) withCode(ctx context.Context, kind sequence.Kind, constraint string, insert func(code string) error) error {
	var err error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := b.codes.Next(ctx, kind)
		err = insert(code)
		if !store.IsUniqueViolation(err, constraint) {
			return err
		}
		b.log.Warn(component, "code %s already taken (attempt %d/%d)", code, attempt, maxCodeAttempts)
	}
	return err
}

// decodeCreate normalises payload and decodes it into dst, rejecting
// unknown fields.
func (b base) decodeCreate(schema normalize.Schema, payload Payload, dst any) error {
	if payload == nil {
		return apperr.Validation("request body must be a JSON object")
	}
	return b.v.Decode(schema.Apply(payload), dst, true)
}

// decodePatch normalises payload, type-checks it against patch and
// returns the change-set. Keys outside the whitelist are left to the
// update builder.
func (b base) decodePatch(schema normalize.Schema, payload Payload, patch any) (store.Changes, error) {
	if payload == nil {
		return nil, apperr.Validation("request body must be a JSON object")
	}
	if err := b.v.Decode(schema.Apply(payload), patch, false); err != nil {
		return nil, err
	}
	return store.Changes(payload), nil
}

var conflictMessages = map[string]string{
	"frota_placa_key":          "a vehicle with this plate already exists",
	"motoristas_documento_key": "a driver with this document already exists",
}

// translate maps storage failures onto the API error kinds. Errors that
// already carry a kind pass through.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("%s not found", entity)
	case errors.Is(err, store.ErrNoChanges):
		return apperr.NoChanges()
	case store.IsUndefinedColumn(err):
		return apperr.SchemaDrift(apperr.CodeSchemaOutdated,
			"database schema is outdated, run the migrations", err)
	case store.IsUndefinedTable(err):
		return apperr.SchemaDrift(apperr.CodeSchemaError,
			"database schema is missing a table, run the migrations", err)
	case store.IsUniqueViolation(err):
		msg := entity + " already exists"
		for constraint, m := range conflictMessages {
			if store.IsUniqueViolation(err, constraint) {
				msg = m
			}
		}
		return apperr.Conflict(msg, err)
	case store.IsForeignKeyViolation(err):
		return apperr.Conflict(entity+" is referenced by other records", err)
	case store.IsNotNullViolation(err):
		column := store.ColumnOf(err)
		return apperr.Field(column, "required", column+" cannot be null")
	case store.IsCheckViolation(err):
		return apperr.Validation("value out of range for " + entity)
	}
	return apperr.Internal(err)
}

// must404 turns a missing referenced row into a not-found error naming it.
func must404(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}

func optString(v any) *string {
	if v == nil {
		return nil
	}
	s := cvt.String(v)
	return &s
}

func optInt64(v any) *int64 {
	if v == nil {
		return nil
	}
	n := cvt.Int64(v)
	return &n
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func upper(s string) string {
	if v, ok := normalize.Upper(s).(string); ok {
		return v
	}
	return s
}
