package service

import (
	"context"

	"github.com/farxc/gestao-fretes/internal/normalize"
	"github.com/farxc/gestao-fretes/internal/rules"
	"github.com/farxc/gestao-fretes/internal/sequence"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/shockerli/cvt"
)

var (
	upperText    = normalize.Chain(normalize.Trim, normalize.Upper)
	optionalDate = normalize.Chain(normalize.Optional, normalize.DateISO)
	trimmed      = normalize.Trim
)

var vehicleSchema = normalize.Schema{Fields: normalize.Rules{
	"placa":                  upperText,
	"placa_carreta":          normalize.OptionalUpper,
	"modelo":                 upperText,
	"status":                 trimmed,
	"tipo_combustivel":       upperText,
	"tipo_veiculo":           upperText,
	"renavam":                normalize.OptionalDigits,
	"renavam_carreta":        normalize.OptionalDigits,
	"chassi":                 normalize.OptionalUpper,
	"registro_antt":          normalize.OptionalUpper,
	"validade_seguro":        optionalDate,
	"validade_licenciamento": optionalDate,
	"proprietario_tipo":      upperText,
	"ultima_manutencao_data": optionalDate,
}}

type VehicleInput struct {
	Plate             string      `json:"placa" validate:"required,plate"`
	TrailerPlate      *string     `json:"placa_carreta" validate:"omitempty,plate"`
	Model             string      `json:"modelo" validate:"required,min=2,max=100"`
	ManufactureYear   *int        `json:"ano_fabricacao" validate:"omitempty,gte=1950,lte=2100"`
	Status            string      `json:"status" validate:"omitempty,oneof=disponivel em_viagem manutencao"`
	FixedDriverID     *int64      `json:"motorista_fixo_id" validate:"omitempty,gt=0"`
	CapacityTons      *float64    `json:"capacidade_toneladas" validate:"omitempty,gt=0"`
	Odometer          *int64      `json:"km_atual" validate:"omitempty,gte=0"`
	FuelType          string      `json:"tipo_combustivel" validate:"omitempty,oneof=DIESEL S10 ARLA OUTRO"`
	VehicleType       string      `json:"tipo_veiculo" validate:"required,oneof=TRUCADO TOCO CARRETA BITREM RODOTREM"`
	Renavam           *string     `json:"renavam" validate:"omitempty,digits,len=11"`
	TrailerRenavam    *string     `json:"renavam_carreta" validate:"omitempty,digits,len=11"`
	Chassis           *string     `json:"chassi" validate:"omitempty,len=17"`
	AnttRegistration  *string     `json:"registro_antt" validate:"omitempty,max=20"`
	InsuranceExpiry   *store.Date `json:"validade_seguro"`
	LicensingExpiry   *store.Date `json:"validade_licenciamento"`
	OwnershipType     string      `json:"proprietario_tipo" validate:"omitempty,oneof=PROPRIO TERCEIRO AGREGADO"`
	LastMaintenance   *store.Date `json:"ultima_manutencao_data"`
	NextMaintenanceKm *int64      `json:"proxima_manutencao_km" validate:"omitempty,gte=0"`
}

func (in VehicleInput) vehicle() *store.Vehicle {
	v := &store.Vehicle{
		Plate:             in.Plate,
		TrailerPlate:      in.TrailerPlate,
		Model:             in.Model,
		ManufactureYear:   in.ManufactureYear,
		Status:            in.Status,
		FixedDriverID:     in.FixedDriverID,
		CapacityTons:      in.CapacityTons,
		Odometer:          in.Odometer,
		FuelType:          in.FuelType,
		VehicleType:       in.VehicleType,
		Renavam:           in.Renavam,
		TrailerRenavam:    in.TrailerRenavam,
		Chassis:           in.Chassis,
		AnttRegistration:  in.AnttRegistration,
		InsuranceExpiry:   in.InsuranceExpiry,
		LicensingExpiry:   in.LicensingExpiry,
		OwnershipType:     in.OwnershipType,
		LastMaintenance:   in.LastMaintenance,
		NextMaintenanceKm: in.NextMaintenanceKm,
	}
	if v.Status == "" {
		v.Status = store.VehicleStatusAvailable
	}
	if v.FuelType == "" {
		v.FuelType = store.FuelS10
	}
	if v.OwnershipType == "" {
		v.OwnershipType = store.OwnershipOwned
	}
	return v
}

// VehiclePatch type-checks update payloads.
type VehiclePatch struct {
	Plate             *string     `json:"placa" validate:"omitempty,plate"`
	TrailerPlate      *string     `json:"placa_carreta" validate:"omitempty,plate"`
	Model             *string     `json:"modelo" validate:"omitempty,min=2,max=100"`
	ManufactureYear   *int        `json:"ano_fabricacao" validate:"omitempty,gte=1950,lte=2100"`
	Status            *string     `json:"status" validate:"omitempty,oneof=disponivel em_viagem manutencao"`
	FixedDriverID     *int64      `json:"motorista_fixo_id" validate:"omitempty,gt=0"`
	CapacityTons      *float64    `json:"capacidade_toneladas" validate:"omitempty,gt=0"`
	Odometer          *int64      `json:"km_atual" validate:"omitempty,gte=0"`
	FuelType          *string     `json:"tipo_combustivel" validate:"omitempty,oneof=DIESEL S10 ARLA OUTRO"`
	VehicleType       *string     `json:"tipo_veiculo" validate:"omitempty,oneof=TRUCADO TOCO CARRETA BITREM RODOTREM"`
	Renavam           *string     `json:"renavam" validate:"omitempty,digits,len=11"`
	TrailerRenavam    *string     `json:"renavam_carreta" validate:"omitempty,digits,len=11"`
	Chassis           *string     `json:"chassi" validate:"omitempty,len=17"`
	AnttRegistration  *string     `json:"registro_antt" validate:"omitempty,max=20"`
	InsuranceExpiry   *store.Date `json:"validade_seguro"`
	LicensingExpiry   *store.Date `json:"validade_licenciamento"`
	OwnershipType     *string     `json:"proprietario_tipo" validate:"omitempty,oneof=PROPRIO TERCEIRO AGREGADO"`
	LastMaintenance   *store.Date `json:"ultima_manutencao_data"`
	NextMaintenanceKm *int64      `json:"proxima_manutencao_km" validate:"omitempty,gte=0"`
}

type VehicleService struct {
	base
}

func (s *VehicleService) List(ctx context.Context, filter store.VehicleFilter, page store.Page) ([]store.Vehicle, int, error) {
	vehicles, total, err := s.store.Vehicles.List(ctx, filter, page)
	if err != nil {
		return nil, 0, translate(err, "vehicle")
	}
	return vehicles, total, nil
}

func (s *VehicleService) Get(ctx context.Context, id int64) (*store.Vehicle, error) {
	v, err := s.store.Vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "vehicle")
	}
	return v, nil
}

// Create registers a vehicle. Trailer-hauling types need a trailer plate.
// A fixed driver, when given, is moved off any other vehicle.
func (s *VehicleService) Create(ctx context.Context, payload Payload) (*store.Vehicle, error) {
	var in VehicleInput
	if err := s.decodeCreate(vehicleSchema, payload, &in); err != nil {
		return nil, err
	}
	if err := rules.CheckTrailer(in.VehicleType, in.TrailerPlate); err != nil {
		return nil, err
	}

	v := in.vehicle()
	err := s.withCode(ctx, sequence.Vehicle, store.ConstraintVehicleCode, func(code string) error {
		v.Code = code
		return s.store.WithTx(ctx, func(tx *store.Storage) error {
			if v.FixedDriverID != nil {
				if err := s.claimDriver(ctx, tx, *v.FixedDriverID, 0); err != nil {
					return err
				}
			}
			return tx.Vehicles.Insert(ctx, v)
		})
	})
	if err != nil {
		return nil, translate(err, "vehicle")
	}

	s.log.Info(component, "vehicle %s (%s) created", v.Code, v.Plate)
	s.dropAggregates(ctx)
	return v, nil
}

// Update applies a partial update. The trailer rule is checked on the
// stored row merged with the changes, so a stored trailer type without a
// plate must be given one before anything else can change.
func (s *VehicleService) Update(ctx context.Context, id int64, payload Payload) (*store.Vehicle, error) {
	changes, err := s.decodePatch(vehicleSchema, payload, &VehiclePatch{})
	if err != nil {
		return nil, err
	}

	var updated *store.Vehicle
	err = s.store.WithTx(ctx, func(tx *store.Storage) error {
		current, err := tx.Vehicles.GetByID(ctx, id)
		if err != nil {
			return err
		}

		vehicleType, trailer := current.VehicleType, current.TrailerPlate
		if changes.Has("tipo_veiculo") {
			vehicleType = cvt.String(changes["tipo_veiculo"])
		}
		if changes.Has("placa_carreta") {
			trailer = optString(changes["placa_carreta"])
		}
		if err := rules.CheckTrailer(vehicleType, trailer); err != nil {
			return err
		}

		if driverID := optInt64(changes["motorista_fixo_id"]); driverID != nil {
			if err := s.claimDriver(ctx, tx, *driverID, id); err != nil {
				return err
			}
		}

		if err := tx.Vehicles.Update(ctx, id, changes); err != nil {
			return err
		}
		updated, err = tx.Vehicles.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "vehicle")
	}
	s.dropAggregates(ctx)
	return updated, nil
}

func (s *VehicleService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Vehicles.Delete(ctx, id); err != nil {
		return translate(err, "vehicle")
	}
	s.dropAggregates(ctx)
	return nil
}

// claimDriver checks the driver exists and releases it from every vehicle
// other than vehicleID.
func (s *VehicleService) claimDriver(ctx context.Context, tx *store.Storage, driverID, vehicleID int64) error {
	if _, err := tx.Drivers.GetByID(ctx, driverID); err != nil {
		return must404(err, "driver %d not found", driverID)
	}
	return tx.Vehicles.ReleaseDriver(ctx, driverID, vehicleID)
}
