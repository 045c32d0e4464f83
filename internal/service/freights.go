package service

import (
	"context"

	"github.com/farxc/gestao-fretes/internal/normalize"
	"github.com/farxc/gestao-fretes/internal/rules"
	"github.com/farxc/gestao-fretes/internal/sequence"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/shockerli/cvt"
)

var freightSchema = normalize.Schema{
	Aliases: map[string]string{"dataFrete": "data_frete"},
	Fields: normalize.Rules{
		"origem":             upperText,
		"destino":            upperText,
		"motorista_nome":     normalize.OptionalUpper,
		"caminhao_placa":     normalize.OptionalUpper,
		"ticket":             normalize.Optional,
		"numero_nota_fiscal": normalize.Optional,
		"fazenda_nome":       normalize.OptionalUpper,
		"mercadoria":         upperText,
		"variedade":          normalize.OptionalUpper,
		"data_frete":         optionalDate,
	},
}

type FreightInput struct {
	Origin        string     `json:"origem" validate:"required,min=3,max=255"`
	Destination   string     `json:"destino" validate:"required,min=3,max=255"`
	DriverID      int64      `json:"motorista_id" validate:"required,gt=0"`
	DriverName    *string    `json:"motorista_nome" validate:"omitempty,min=3"`
	VehicleID     int64      `json:"caminhao_id" validate:"required,gt=0"`
	VehiclePlate  *string    `json:"caminhao_placa" validate:"omitempty,min=5"`
	Ticket        *string    `json:"ticket" validate:"omitempty,digits"`
	InvoiceNumber *string    `json:"numero_nota_fiscal" validate:"omitempty,invoice"`
	FarmID        *int64     `json:"fazenda_id" validate:"omitempty,gt=0"`
	FarmName      *string    `json:"fazenda_nome"`
	Commodity     string     `json:"mercadoria" validate:"required,max=100"`
	Variety       *string    `json:"variedade" validate:"omitempty,max=100"`
	Date          store.Date `json:"data_frete" validate:"required"`
	Sacks         int64      `json:"quantidade_sacas" validate:"gt=0"`
	Tons          float64    `json:"toneladas" validate:"gt=0"`
	RatePerTon    float64    `json:"valor_por_tonelada" validate:"gt=0"`
	Revenue       *float64   `json:"receita" validate:"omitempty,gt=0"`
	Costs         *float64   `json:"custos" validate:"omitempty,gte=0"`
	Result        *float64   `json:"resultado"`
}

// freight builds the row with its derived values: revenue first, then
// result from revenue and costs.
func (in FreightInput) freight() *store.Freight {
	f := &store.Freight{
		Origin:        in.Origin,
		Destination:   in.Destination,
		DriverID:      in.DriverID,
		VehicleID:     in.VehicleID,
		Ticket:        in.Ticket,
		InvoiceNumber: in.InvoiceNumber,
		FarmID:        in.FarmID,
		FarmName:      in.FarmName,
		Commodity:     in.Commodity,
		Variety:       in.Variety,
		Date:          in.Date,
		Sacks:         in.Sacks,
		Tons:          in.Tons,
		RatePerTon:    in.RatePerTon,
	}
	if in.DriverName != nil {
		f.DriverName = *in.DriverName
	}
	if in.VehiclePlate != nil {
		f.VehiclePlate = *in.VehiclePlate
	}

	f.Revenue = rules.DeriveRevenue(in.Revenue, in.Tons, in.RatePerTon)
	if in.Costs != nil {
		f.Costs = *in.Costs
	}
	if in.Result != nil {
		f.Result = *in.Result
	} else {
		f.Result = rules.DeriveResult(f.Revenue, f.Costs)
	}
	return f
}

type FreightPatch struct {
	Origin        *string     `json:"origem" validate:"omitempty,min=3,max=255"`
	Destination   *string     `json:"destino" validate:"omitempty,min=3,max=255"`
	DriverID      *int64      `json:"motorista_id" validate:"omitempty,gt=0"`
	DriverName    *string     `json:"motorista_nome" validate:"omitempty,min=3"`
	VehicleID     *int64      `json:"caminhao_id" validate:"omitempty,gt=0"`
	VehiclePlate  *string     `json:"caminhao_placa" validate:"omitempty,min=5"`
	Ticket        *string     `json:"ticket" validate:"omitempty,digits"`
	InvoiceNumber *string     `json:"numero_nota_fiscal" validate:"omitempty,invoice"`
	FarmID        *int64      `json:"fazenda_id" validate:"omitempty,gt=0"`
	FarmName      *string     `json:"fazenda_nome"`
	Commodity     *string     `json:"mercadoria" validate:"omitempty,max=100"`
	Variety       *string     `json:"variedade" validate:"omitempty,max=100"`
	Date          *store.Date `json:"data_frete"`
	Sacks         *int64      `json:"quantidade_sacas" validate:"omitempty,gt=0"`
	Tons          *float64    `json:"toneladas" validate:"omitempty,gt=0"`
	RatePerTon    *float64    `json:"valor_por_tonelada" validate:"omitempty,gt=0"`
	Revenue       *float64    `json:"receita" validate:"omitempty,gt=0"`
	Costs         *float64    `json:"custos" validate:"omitempty,gte=0"`
	Result        *float64    `json:"resultado"`
}

type FreightService struct {
	base
}

func (s *FreightService) List(ctx context.Context, filter store.FreightFilter, page store.Page) ([]store.Freight, int, error) {
	freights, total, err := s.store.Freights.List(ctx, filter, page)
	if err != nil {
		return nil, 0, translate(err, "freight")
	}
	return freights, total, nil
}

// Pending lists unsettled freights, optionally of one driver.
func (s *FreightService) Pending(ctx context.Context, driverID *int64) ([]store.Freight, error) {
	freights, err := s.store.Freights.ListPending(ctx, driverID)
	if err != nil {
		return nil, translate(err, "freight")
	}
	return freights, nil
}

func (s *FreightService) Get(ctx context.Context, id int64) (*store.Freight, error) {
	f, err := s.store.Freights.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "freight")
	}
	return f, nil
}

// Costs lists the costs posted against a freight.
func (s *FreightService) Costs(ctx context.Context, id int64) ([]store.Cost, error) {
	if _, err := s.store.Freights.GetByID(ctx, id); err != nil {
		return nil, translate(err, "freight")
	}
	costs, err := s.store.Costs.ListByFreight(ctx, id)
	if err != nil {
		return nil, translate(err, "cost")
	}
	return costs, nil
}

// Create records a freight and, when it names a farm, adds its volume to
// the farm's running totals in the same transaction.
func (s *FreightService) Create(ctx context.Context, payload Payload) (*store.Freight, error) {
	var in FreightInput
	if err := s.decodeCreate(freightSchema, payload, &in); err != nil {
		return nil, err
	}

	f := in.freight()
	err := s.withCode(ctx, sequence.Freight, store.ConstraintFreightCode, func(code string) error {
		f.Code = code
		return s.store.WithTx(ctx, func(tx *store.Storage) error {
			if err := s.resolveRefs(ctx, tx, f); err != nil {
				return err
			}
			if err := tx.Freights.Insert(ctx, f); err != nil {
				return err
			}
			if f.FarmID == nil {
				return nil
			}
			return tx.Farms.AddVolume(ctx, *f.FarmID, store.FarmVolume{
				Sacks:   f.Sacks,
				Tons:    f.Tons,
				Revenue: f.Revenue,
				Date:    f.Date,
			})
		})
	})
	if err != nil {
		return nil, translate(err, "freight")
	}

	s.log.Info(component, "freight %s created (%s -> %s)", f.Code, f.Origin, f.Destination)
	s.dropAggregates(ctx)
	return f, nil
}

// resolveRefs checks the driver, vehicle and farm exist and fills the
// cached names the payload left out.
func (s *FreightService) resolveRefs(ctx context.Context, tx *store.Storage, f *store.Freight) error {
	driver, err := tx.Drivers.GetByID(ctx, f.DriverID)
	if err != nil {
		return must404(err, "driver %d not found", f.DriverID)
	}
	if f.DriverName == "" {
		f.DriverName = driver.Name
	}

	vehicle, err := tx.Vehicles.GetByID(ctx, f.VehicleID)
	if err != nil {
		return must404(err, "vehicle %d not found", f.VehicleID)
	}
	if f.VehiclePlate == "" {
		f.VehiclePlate = vehicle.Plate
	}

	if f.FarmID != nil {
		farm, err := tx.Farms.GetByID(ctx, *f.FarmID)
		if err != nil {
			return must404(err, "farm %d not found", *f.FarmID)
		}
		if blank(f.FarmName) {
			f.FarmName = &farm.Name
		}
	}
	return nil
}

// Update applies a partial update and re-derives revenue and result from
// the stored row unless the payload sets them.
func (s *FreightService) Update(ctx context.Context, id int64, payload Payload) (*store.Freight, error) {
	changes, err := s.decodePatch(freightSchema, payload, &FreightPatch{})
	if err != nil {
		return nil, err
	}

	var updated *store.Freight
	err = s.store.WithTx(ctx, func(tx *store.Storage) error {
		current, err := tx.Freights.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.refreshRefs(ctx, tx, changes); err != nil {
			return err
		}
		derive(current, changes)

		if err := tx.Freights.Update(ctx, id, changes); err != nil {
			return err
		}
		updated, err = tx.Freights.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "freight")
	}
	s.dropAggregates(ctx)
	return updated, nil
}

func (s *FreightService) refreshRefs(ctx context.Context, tx *store.Storage, changes store.Changes) error {
	if id := optInt64(changes["motorista_id"]); id != nil {
		d, err := tx.Drivers.GetByID(ctx, *id)
		if err != nil {
			return must404(err, "driver %d not found", *id)
		}
		if !changes.Has("motorista_nome") {
			changes["motorista_nome"] = d.Name
		}
	}
	if id := optInt64(changes["caminhao_id"]); id != nil {
		v, err := tx.Vehicles.GetByID(ctx, *id)
		if err != nil {
			return must404(err, "vehicle %d not found", *id)
		}
		if !changes.Has("caminhao_placa") {
			changes["caminhao_placa"] = v.Plate
		}
	}
	if id := optInt64(changes["fazenda_id"]); id != nil {
		farm, err := tx.Farms.GetByID(ctx, *id)
		if err != nil {
			return must404(err, "farm %d not found", *id)
		}
		if !changes.Has("fazenda_nome") {
			changes["fazenda_nome"] = farm.Name
		}
	}
	return nil
}

// derive fills receita and resultado in changes when their inputs change
// and the payload does not set them.
func derive(current *store.Freight, changes store.Changes) {
	float := func(column string, stored float64) float64 {
		if v, ok := changes[column]; ok && v != nil {
			return cvt.Float64(v)
		}
		return stored
	}

	if (changes.Has("toneladas") || changes.Has("valor_por_tonelada")) && !changes.Has("receita") {
		changes["receita"] = rules.DeriveRevenue(nil,
			float("toneladas", current.Tons), float("valor_por_tonelada", current.RatePerTon))
	}
	if (changes.Has("receita") || changes.Has("custos")) && !changes.Has("resultado") {
		changes["resultado"] = rules.DeriveResult(
			float("receita", current.Revenue), float("custos", current.Costs))
	}
}

func (s *FreightService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Freights.Delete(ctx, id); err != nil {
		return translate(err, "freight")
	}
	s.dropAggregates(ctx)
	return nil
}
