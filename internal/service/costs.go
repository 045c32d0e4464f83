package service

import (
	"context"

	"github.com/farxc/gestao-fretes/internal/normalize"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/shockerli/cvt"
)

var costSchema = normalize.Schema{Fields: normalize.Rules{
	"tipo":             trimmed,
	"descricao":        upperText,
	"data":             optionalDate,
	"observacoes":      normalize.OptionalUpper,
	"motorista":        normalize.OptionalUpper,
	"caminhao":         normalize.OptionalUpper,
	"rota":             normalize.OptionalUpper,
	"tipo_combustivel": normalize.Optional,
}}

type CostInput struct {
	FreightID   int64      `json:"frete_id" validate:"required,gt=0"`
	Type        string     `json:"tipo" validate:"required,oneof=combustivel manutencao pedagio outros"`
	Description string     `json:"descricao" validate:"required,min=3,max=500"`
	Amount      float64    `json:"valor" validate:"gt=0"`
	Date        store.Date `json:"data" validate:"required"`
	HasReceipt  bool       `json:"comprovante"`
	Notes       *string    `json:"observacoes"`
	Driver      *string    `json:"motorista"`
	Vehicle     *string    `json:"caminhao"`
	Route       *string    `json:"rota"`
	Liters      *float64   `json:"litros" validate:"omitempty,gt=0"`
	FuelType    *string    `json:"tipo_combustivel" validate:"omitempty,oneof=gasolina diesel etanol gnv"`
}

type CostPatch struct {
	FreightID   *int64      `json:"frete_id" validate:"omitempty,gt=0"`
	Type        *string     `json:"tipo" validate:"omitempty,oneof=combustivel manutencao pedagio outros"`
	Description *string     `json:"descricao" validate:"omitempty,min=3,max=500"`
	Amount      *float64    `json:"valor" validate:"omitempty,gt=0"`
	Date        *store.Date `json:"data"`
	HasReceipt  *bool       `json:"comprovante"`
	Notes       *string     `json:"observacoes"`
	Driver      *string     `json:"motorista"`
	Vehicle     *string     `json:"caminhao"`
	Route       *string     `json:"rota"`
	Liters      *float64    `json:"litros" validate:"omitempty,gt=0"`
	FuelType    *string     `json:"tipo_combustivel" validate:"omitempty,oneof=gasolina diesel etanol gnv"`
}

type CostService struct {
	base
}

func (s *CostService) List(ctx context.Context, page store.Page) ([]store.Cost, int, error) {
	costs, total, err := s.store.Costs.List(ctx, page)
	if err != nil {
		return nil, 0, translate(err, "cost")
	}
	return costs, total, nil
}

func (s *CostService) Get(ctx context.Context, id int64) (*store.Cost, error) {
	c, err := s.store.Costs.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "cost")
	}
	return c, nil
}

// Create posts a cost and rolls its amount up into the freight's costs
// and result.
func (s *CostService) Create(ctx context.Context, payload Payload) (*store.Cost, error) {
	var in CostInput
	if err := s.decodeCreate(costSchema, payload, &in); err != nil {
		return nil, err
	}

	c := &store.Cost{
		FreightID:   in.FreightID,
		Type:        in.Type,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		HasReceipt:  in.HasReceipt,
		Notes:       in.Notes,
		Driver:      in.Driver,
		Vehicle:     in.Vehicle,
		Route:       in.Route,
		Liters:      in.Liters,
		FuelType:    in.FuelType,
	}

	err := s.store.WithTx(ctx, func(tx *store.Storage) error {
		if _, err := tx.Freights.GetByID(ctx, c.FreightID); err != nil {
			return must404(err, "freight %d not found", c.FreightID)
		}
		if err := tx.Costs.Insert(ctx, c); err != nil {
			return err
		}
		return tx.Freights.AddCost(ctx, c.FreightID, c.Amount)
	})
	if err != nil {
		return nil, translate(err, "cost")
	}
	s.dropAggregates(ctx)
	return c, nil
}

// Update applies a partial update. When the amount or the freight changes
// the rollup moves with it.
func (s *CostService) Update(ctx context.Context, id int64, payload Payload) (*store.Cost, error) {
	changes, err := s.decodePatch(costSchema, payload, &CostPatch{})
	if err != nil {
		return nil, err
	}

	var updated *store.Cost
	err = s.store.WithTx(ctx, func(tx *store.Storage) error {
		current, err := tx.Costs.GetByID(ctx, id)
		if err != nil {
			return err
		}

		freightID, amount := current.FreightID, current.Amount
		if v := changes["frete_id"]; v != nil {
			freightID = cvt.Int64(v)
		}
		if v := changes["valor"]; v != nil {
			amount = cvt.Float64(v)
		}
		if freightID != current.FreightID {
			if _, err := tx.Freights.GetByID(ctx, freightID); err != nil {
				return must404(err, "freight %d not found", freightID)
			}
		}

		if err := tx.Costs.Update(ctx, id, changes); err != nil {
			return err
		}

		if freightID != current.FreightID || amount != current.Amount {
			if err := tx.Freights.AddCost(ctx, current.FreightID, -current.Amount); err != nil {
				return err
			}
			if err := tx.Freights.AddCost(ctx, freightID, amount); err != nil {
				return err
			}
		}

		updated, err = tx.Costs.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "cost")
	}
	s.dropAggregates(ctx)
	return updated, nil
}

// Delete removes a cost and takes its amount back off the freight.
func (s *CostService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(tx *store.Storage) error {
		c, err := tx.Costs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Costs.Delete(ctx, id); err != nil {
			return err
		}
		return tx.Freights.AddCost(ctx, c.FreightID, -c.Amount)
	})
	if err != nil {
		return translate(err, "cost")
	}
	s.dropAggregates(ctx)
	return nil
}
