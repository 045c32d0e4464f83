package service

import (
	"context"
	"errors"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/normalize"
	"github.com/farxc/gestao-fretes/internal/rules"
	"github.com/farxc/gestao-fretes/internal/sequence"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/shockerli/cvt"
)

// vehicleField carries the bound vehicle in driver payloads. It is not a
// column of motoristas.
const vehicleField = "veiculo_id"

var driverSchema = normalize.Schema{Fields: normalize.Rules{
	"nome":              upperText,
	"documento":         normalize.StripNonDigits,
	"telefone":          normalize.OptionalDigits,
	"email":             normalize.Optional,
	"endereco":          normalize.OptionalUpper,
	"cnh":               normalize.OptionalDigits,
	"cnh_validade":      optionalDate,
	"cnh_categoria":     normalize.OptionalUpper,
	"status":            trimmed,
	"tipo":              trimmed,
	"data_admissao":     optionalDate,
	"data_desligamento": optionalDate,
	"tipo_pagamento":    normalize.Optional,
	"chave_pix_tipo":    normalize.Optional,
	"chave_pix":         normalize.Optional,
	"banco":             normalize.OptionalUpper,
	"agencia":           normalize.Optional,
	"conta":             normalize.Optional,
	"tipo_conta":        normalize.Optional,
}}

type DriverInput struct {
	Name            string      `json:"nome" validate:"required,min=3,max=255"`
	Document        string      `json:"documento" validate:"required,document"`
	Phone           *string     `json:"telefone" validate:"omitempty,digits,min=10,max=11"`
	Email           *string     `json:"email" validate:"omitempty,email"`
	Address         *string     `json:"endereco" validate:"omitempty,max=255"`
	License         *string     `json:"cnh" validate:"omitempty,digits,len=11"`
	LicenseExpiry   *store.Date `json:"cnh_validade"`
	LicenseCategory *string     `json:"cnh_categoria" validate:"omitempty,oneof=A B C D E AB AC AD AE"`
	Status          string      `json:"status" validate:"omitempty,oneof=ativo inativo ferias"`
	Type            string      `json:"tipo" validate:"required,oneof=proprio terceirizado agregado"`
	HiredAt         *store.Date `json:"data_admissao"`
	DismissedAt     *store.Date `json:"data_desligamento"`
	PaymentMethod   *string     `json:"tipo_pagamento" validate:"omitempty,oneof=pix transferencia_bancaria"`
	PixKeyType      *string     `json:"chave_pix_tipo" validate:"omitempty,oneof=cpf email telefone aleatoria cnpj"`
	PixKey          *string     `json:"chave_pix" validate:"omitempty,max=255"`
	Bank            *string     `json:"banco" validate:"omitempty,max=100"`
	Agency          *string     `json:"agencia" validate:"omitempty,max=20"`
	Account         *string     `json:"conta" validate:"omitempty,max=30"`
	AccountType     *string     `json:"tipo_conta" validate:"omitempty,oneof=corrente poupanca"`
	VehicleID       *int64      `json:"veiculo_id" validate:"omitempty,gt=0"`
}

func (in DriverInput) driver() *store.Driver {
	d := &store.Driver{
		Name:            in.Name,
		Document:        in.Document,
		Phone:           in.Phone,
		Email:           in.Email,
		Address:         in.Address,
		License:         in.License,
		LicenseExpiry:   in.LicenseExpiry,
		LicenseCategory: in.LicenseCategory,
		Status:          in.Status,
		Type:            in.Type,
		HiredAt:         in.HiredAt,
		DismissedAt:     in.DismissedAt,
		PaymentMethod:   in.PaymentMethod,
		PixKeyType:      in.PixKeyType,
		PixKey:          in.PixKey,
		Bank:            in.Bank,
		Agency:          in.Agency,
		Account:         in.Account,
		AccountType:     in.AccountType,
	}
	if d.Status == "" {
		d.Status = store.DriverStatusActive
	}
	return d
}

type DriverPatch struct {
	Name            *string     `json:"nome" validate:"omitempty,min=3,max=255"`
	Document        *string     `json:"documento" validate:"omitempty,document"`
	Phone           *string     `json:"telefone" validate:"omitempty,digits,min=10,max=11"`
	Email           *string     `json:"email" validate:"omitempty,email"`
	Address         *string     `json:"endereco" validate:"omitempty,max=255"`
	License         *string     `json:"cnh" validate:"omitempty,digits,len=11"`
	LicenseExpiry   *store.Date `json:"cnh_validade"`
	LicenseCategory *string     `json:"cnh_categoria" validate:"omitempty,oneof=A B C D E AB AC AD AE"`
	Status          *string     `json:"status" validate:"omitempty,oneof=ativo inativo ferias"`
	Type            *string     `json:"tipo" validate:"omitempty,oneof=proprio terceirizado agregado"`
	HiredAt         *store.Date `json:"data_admissao"`
	DismissedAt     *store.Date `json:"data_desligamento"`
	PaymentMethod   *string     `json:"tipo_pagamento" validate:"omitempty,oneof=pix transferencia_bancaria"`
	PixKeyType      *string     `json:"chave_pix_tipo" validate:"omitempty,oneof=cpf email telefone aleatoria cnpj"`
	PixKey          *string     `json:"chave_pix" validate:"omitempty,max=255"`
	Bank            *string     `json:"banco" validate:"omitempty,max=100"`
	Agency          *string     `json:"agencia" validate:"omitempty,max=20"`
	Account         *string     `json:"conta" validate:"omitempty,max=30"`
	AccountType     *string     `json:"tipo_conta" validate:"omitempty,oneof=corrente poupanca"`
	Revenue         *float64    `json:"receita_gerada" validate:"omitempty,gte=0"`
	Trips           *int        `json:"viagens_realizadas" validate:"omitempty,gte=0"`
	VehicleID       *int64      `json:"veiculo_id" validate:"omitempty,gt=0"`
}

type DriverService struct {
	base
}

func (s *DriverService) List(ctx context.Context, page store.Page) ([]store.Driver, int, error) {
	drivers, total, err := s.store.Drivers.List(ctx, page)
	if err != nil {
		return nil, 0, translate(err, "driver")
	}
	return drivers, total, nil
}

// Get returns the driver with the vehicle currently bound to it.
func (s *DriverService) Get(ctx context.Context, id int64) (*store.Driver, error) {
	d, err := s.get(ctx, s.store, id)
	if err != nil {
		return nil, translate(err, "driver")
	}
	return d, nil
}

func (s *DriverService) get(ctx context.Context, st *store.Storage, id int64) (*store.Driver, error) {
	d, err := st.Drivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v, err := st.Vehicles.GetByDriver(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		d.BoundVehicle = &store.VehicleSummary{ID: v.ID, Plate: v.Plate, Model: v.Model, VehicleType: v.VehicleType}
	}
	return d, nil
}

// Create registers a driver. Outsourced and aggregated drivers must name
// the vehicle they are bound to.
func (s *DriverService) Create(ctx context.Context, payload Payload) (*store.Driver, error) {
	var in DriverInput
	if err := s.decodeCreate(driverSchema, payload, &in); err != nil {
		return nil, err
	}
	if err := rules.CheckBinding(in.Type, in.VehicleID); err != nil {
		return nil, err
	}

	d := in.driver()
	var created *store.Driver
	err := s.withCode(ctx, sequence.Driver, store.ConstraintDriverCode, func(code string) error {
		d.Code = code
		return s.store.WithTx(ctx, func(tx *store.Storage) error {
			if in.VehicleID != nil {
				if _, err := tx.Vehicles.GetByID(ctx, *in.VehicleID); err != nil {
					return must404(err, "vehicle %d not found", *in.VehicleID)
				}
			}
			if err := tx.Drivers.Insert(ctx, d); err != nil {
				return err
			}
			if in.VehicleID != nil {
				if err := tx.Vehicles.BindDriver(ctx, *in.VehicleID, d.ID); err != nil {
					return err
				}
			}
			var err error
			created, err = s.get(ctx, tx, d.ID)
			return err
		})
	})
	if err != nil {
		return nil, translate(err, "driver")
	}

	s.log.Info(component, "driver %s created", created.Code)
	s.dropAggregates(ctx)
	return created, nil
}

// Update applies a partial update. A driver switched to an outsourced or
// aggregated type keeps or receives a vehicle; binding a new vehicle
// releases the previous one.
func (s *DriverService) Update(ctx context.Context, id int64, payload Payload) (*store.Driver, error) {
	changes, err := s.decodePatch(driverSchema, payload, &DriverPatch{})
	if err != nil {
		return nil, err
	}
	vehicleID := optInt64(changes[vehicleField])
	columns := changes.Only(store.DriverFields)
	if len(columns) == 0 && vehicleID == nil {
		return nil, apperr.NoChanges()
	}

	var updated *store.Driver
	err = s.store.WithTx(ctx, func(tx *store.Storage) error {
		current, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if columns.Has("tipo") {
			bound := vehicleID
			if bound == nil && current.BoundVehicle != nil {
				bound = &current.BoundVehicle.ID
			}
			if err := rules.CheckBinding(cvt.String(columns["tipo"]), bound); err != nil {
				return err
			}
		}

		if len(columns) > 0 {
			if err := tx.Drivers.Update(ctx, id, columns); err != nil {
				return err
			}
		}

		if vehicleID != nil {
			if _, err := tx.Vehicles.GetByID(ctx, *vehicleID); err != nil {
				return must404(err, "vehicle %d not found", *vehicleID)
			}
			if err := tx.Vehicles.ReleaseDriver(ctx, id, *vehicleID); err != nil {
				return err
			}
			if err := tx.Vehicles.BindDriver(ctx, *vehicleID, id); err != nil {
				return err
			}
		}

		updated, err = s.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "driver")
	}
	s.dropAggregates(ctx)
	return updated, nil
}

func (s *DriverService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Drivers.Delete(ctx, id); err != nil {
		return translate(err, "driver")
	}
	s.dropAggregates(ctx)
	return nil
}
