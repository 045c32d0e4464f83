// Package memstore implements every store repository in memory. It
// mirrors the Postgres behaviour the services rely on: unique and
// foreign-key violations, whitelisted updates and transactions that roll
// back on error.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/lib/pq"
	"github.com/shockerli/cvt"
)

type tables struct {
	nextID      map[string]int64
	vehicles    map[int64]store.Vehicle
	drivers     map[int64]store.Driver
	freights    map[int64]store.Freight
	costs       map[int64]store.Cost
	payments    map[int64]store.Payment
	farms       map[int64]store.Farm
	attachments map[int64]store.Attachment
}

func (t tables) clone() tables {
	return tables{
		nextID:      maps.Clone(t.nextID),
		vehicles:    maps.Clone(t.vehicles),
		drivers:     maps.Clone(t.drivers),
		freights:    maps.Clone(t.freights),
		costs:       maps.Clone(t.costs),
		payments:    maps.Clone(t.payments),
		farms:       maps.Clone(t.farms),
		attachments: maps.Clone(t.attachments),
	}
}

// DB holds the in-memory tables.
type DB struct {
	mu   sync.Mutex
	txMu sync.Mutex
	t    tables

	// Sequence counters live outside transactions, like Postgres
	// sequences.
	sequences map[string]int64

	// SequenceErr, when set, fails every allocation.
	SequenceErr error
	// FailOn makes the named operation (e.g. "Freights.Settle") fail.
	FailOn map[string]error

	now func() time.Time
}

// New returns a Storage backed by a fresh in-memory DB.
func New() (*store.Storage, *DB) {
	db := &DB{
		t: tables{
			nextID:      map[string]int64{},
			vehicles:    map[int64]store.Vehicle{},
			drivers:     map[int64]store.Driver{},
			freights:    map[int64]store.Freight{},
			costs:       map[int64]store.Cost{},
			payments:    map[int64]store.Payment{},
			farms:       map[int64]store.Farm{},
			attachments: map[int64]store.Attachment{},
		},
		sequences: map[string]int64{},
		FailOn:    map[string]error{},
		now:       time.Now,
	}
	s := db.storage()
	s.Runner = &runner{db: db}
	return s, db
}

func (db *DB) storage() *store.Storage {
	return &store.Storage{
		Vehicles:    &vehicles{db},
		Drivers:     &drivers{db},
		Freights:    &freights{db},
		Costs:       &costs{db},
		Payments:    &payments{db},
		Farms:       &farms{db},
		Attachments: &attachments{db},
		Sequences:   &sequences{db},
		Dashboard:   &dashboard{db},
	}
}

type runner struct {
	db *DB
}

// RunInTx serialises transactions and restores the tables when fn fails.
func (r *runner) RunInTx(ctx context.Context, fn func(tx *store.Storage) error) error {
	r.db.txMu.Lock()
	defer r.db.txMu.Unlock()

	r.db.mu.Lock()
	snap := r.db.t.clone()
	r.db.mu.Unlock()

	if err := fn(r.db.storage()); err != nil {
		r.db.mu.Lock()
		r.db.t = snap
		r.db.mu.Unlock()
		return err
	}
	return nil
}

func (db *DB) fail(op string) error {
	if err, ok := db.FailOn[op]; ok {
		return err
	}
	return nil
}

func (db *DB) id(table string) int64 {
	db.t.nextID[table]++
	return db.t.nextID[table]
}

// Seed helpers let tests arrange state directly.

func (db *DB) Vehicle(id int64) (store.Vehicle, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	v, ok := db.t.vehicles[id]
	return v, ok
}

func (db *DB) Freight(id int64) (store.Freight, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	f, ok := db.t.freights[id]
	return f, ok
}

func (db *DB) Farm(id int64) (store.Farm, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	f, ok := db.t.farms[id]
	return f, ok
}

func (db *DB) Payment(id int64) (store.Payment, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.t.payments[id]
	return p, ok
}

// SetFreightPayment stamps a payment id directly, bypassing settlement.
func (db *DB) SetFreightPayment(freightID, paymentID int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	f := db.t.freights[freightID]
	f.PaymentID = &paymentID
	db.t.freights[freightID] = f
}

// Counter returns the current value of a sequence scope.
func (db *DB) Counter(scope string) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.sequences[scope]
}

func notNullViolation(column string) error {
	return &pq.Error{Code: "23502", Message: "null value in column \"" + column + "\"", Column: column}
}

// apply sets the whitelisted columns of changes on the struct dst points
// to, mirroring an UPDATE.
func apply(dst any, changes store.Changes, allowed []string) error {
	subset := changes.Only(allowed)
	if len(subset) == 0 {
		return store.ErrNoChanges
	}

	v := reflect.ValueOf(dst).Elem()
	for _, column := range allowed {
		value, ok := subset[column]
		if !ok {
			continue
		}
		field, ok := fieldByColumn(v, column)
		if !ok {
			return fmt.Errorf("no column %s on %s", column, v.Type().Name())
		}
		if err := assign(field, value); err != nil {
			if errors.Is(err, errNull) {
				return notNullViolation(column)
			}
			return fmt.Errorf("column %s: %w", column, err)
		}
	}
	return nil
}

func fieldByColumn(v reflect.Value, column string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("db"), ",")
		if name == column {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

var (
	errNull    = errors.New("null into non-nullable column")
	dateType   = reflect.TypeOf(store.Date{})
	timeType   = reflect.TypeOf(time.Time{})
	int64Array = reflect.TypeOf(pq.Int64Array{})
)

func assign(field reflect.Value, value any) error {
	if value == nil {
		if field.Kind() == reflect.Pointer || field.Type() == int64Array {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		return errNull
	}

	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	switch field.Type() {
	case dateType:
		d, err := toDate(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	case timeType:
		t, err := cvt.TimeE(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		s, err := cvt.StringE(value)
		if err != nil {
			return err
		}
		field.SetString(s)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := cvt.Int64E(value)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := cvt.Float64E(value)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := cvt.BoolE(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported column type %s", field.Type())
	}
	return nil
}

func toDate(value any) (store.Date, error) {
	switch v := value.(type) {
	case store.Date:
		return v, nil
	case *store.Date:
		return *v, nil
	case time.Time:
		return store.DateOf(v), nil
	case string:
		return store.ParseDate(v)
	}
	return store.Date{}, fmt.Errorf("cannot use %T as date", value)
}

func pageOf[T any](items []T, p store.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}
