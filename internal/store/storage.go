package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so every repository
// runs unchanged inside or outside a transaction.
type Queryer interface {
	sqlx.ExtContext
}

// Page is a resolved LIMIT/OFFSET window.
type Page struct {
	Limit  int
	Offset int
}

// TxRunner opens a transaction and hands fn a Storage bound to it. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *Storage) error) error
}

type Storage struct {
	Vehicles interface {
		List(ctx context.Context, filter VehicleFilter, page Page) ([]Vehicle, int, error)
		GetByID(ctx context.Context, id int64) (*Vehicle, error)
		GetByDriver(ctx context.Context, driverID int64) (*Vehicle, error)
		Insert(ctx context.Context, v *Vehicle) error
		Update(ctx context.Context, id int64, changes Changes) error
		Delete(ctx context.Context, id int64) error
		BindDriver(ctx context.Context, vehicleID, driverID int64) error
		ReleaseDriver(ctx context.Context, driverID, exceptVehicleID int64) error
	}

	Drivers interface {
		List(ctx context.Context, page Page) ([]Driver, int, error)
		GetByID(ctx context.Context, id int64) (*Driver, error)
		Insert(ctx context.Context, d *Driver) error
		Update(ctx context.Context, id int64, changes Changes) error
		Delete(ctx context.Context, id int64) error
	}

	Freights interface {
		List(ctx context.Context, filter FreightFilter, page Page) ([]Freight, int, error)
		ListPending(ctx context.Context, driverID *int64) ([]Freight, error)
		GetByID(ctx context.Context, id int64) (*Freight, error)
		Insert(ctx context.Context, f *Freight) error
		Update(ctx context.Context, id int64, changes Changes) error
		Delete(ctx context.Context, id int64) error
		AddCost(ctx context.Context, id int64, amount float64) error
		LockForSettlement(ctx context.Context, ids []int64) ([]SettlementState, error)
		Settle(ctx context.Context, paymentID int64, ids []int64) (int64, error)
		Unsettle(ctx context.Context, paymentID int64) (int64, error)
	}

	Costs interface {
		List(ctx context.Context, page Page) ([]Cost, int, error)
		ListByFreight(ctx context.Context, freightID int64) ([]Cost, error)
		GetByID(ctx context.Context, id int64) (*Cost, error)
		Insert(ctx context.Context, c *Cost) error
		Update(ctx context.Context, id int64, changes Changes) error
		Delete(ctx context.Context, id int64) error
	}

	Payments interface {
		List(ctx context.Context, page Page) ([]Payment, int, error)
		GetByID(ctx context.Context, id int64) (*Payment, error)
		Insert(ctx context.Context, p *Payment) error
		Update(ctx context.Context, id int64, changes Changes) error
		Delete(ctx context.Context, id int64) error
		SetReceipt(ctx context.Context, id int64, name, url string, at time.Time) error
	}

	Farms interface {
		List(ctx context.Context, page Page) ([]Farm, int, error)
		GetByID(ctx context.Context, id int64) (*Farm, error)
		Insert(ctx context.Context, f *Farm) error
		Update(ctx context.Context, id int64, changes Changes) error
		Delete(ctx context.Context, id int64) error
		AddVolume(ctx context.Context, id int64, v FarmVolume) error
	}

	Attachments interface {
		Insert(ctx context.Context, a *Attachment) error
		ListByEntity(ctx context.Context, entityType string, entityID int64) ([]Attachment, error)
	}

	Sequences interface {
		Allocate(ctx context.Context, scope string) (int64, error)
		Raise(ctx context.Context, scope string, atLeast int64) error
		MaxCode(ctx context.Context, table, column, prefix string) (string, error)
	}

	Dashboard interface {
		KPIs(ctx context.Context) (KPIs, error)
		RouteStats(ctx context.Context) ([]RouteStat, error)
	}

	// Runner is nil for a Storage already bound to a transaction; WithTx
	// then runs fn against the receiver.
	Runner TxRunner

	pinger interface {
		PingContext(ctx context.Context) error
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	s := bind(db)
	s.Runner = &sqlTxRunner{db: db}
	s.pinger = db
	return s
}

func bind(q Queryer) *Storage {
	return &Storage{
		Vehicles:    &VehicleStore{db: q},
		Drivers:     &DriverStore{db: q},
		Freights:    &FreightStore{db: q},
		Costs:       &CostStore{db: q},
		Payments:    &PaymentStore{db: q},
		Farms:       &FarmStore{db: q},
		Attachments: &AttachmentStore{db: q},
		Sequences:   &SequenceStore{db: q},
		Dashboard:   &DashboardStore{db: q},
	}
}

// WithTx runs fn inside a single database transaction.
func (s *Storage) WithTx(ctx context.Context, fn func(tx *Storage) error) error {
	if s.Runner == nil {
		return fn(s)
	}
	return s.Runner.RunInTx(ctx, fn)
}

// Ping checks the database connection. Storages without a connection,
// such as in-memory ones, always succeed.
func (s *Storage) Ping(ctx context.Context) error {
	if s.pinger == nil {
		return nil
	}
	return s.pinger.PingContext(ctx)
}

type sqlTxRunner struct {
	db *sqlx.DB
}

func (r *sqlTxRunner) RunInTx(ctx context.Context, fn func(tx *Storage) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(bind(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
