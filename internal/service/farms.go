package service

import (
	"context"

	"github.com/farxc/gestao-fretes/internal/normalize"
	"github.com/farxc/gestao-fretes/internal/sequence"
	"github.com/farxc/gestao-fretes/internal/store"
)

var farmSchema = normalize.Schema{Fields: normalize.Rules{
	"fazenda":      upperText,
	"estado":       upperText,
	"proprietario": upperText,
	"mercadoria":   upperText,
	"variedade":    normalize.OptionalUpper,
	"safra":        upperText,
	"ultimo_frete": optionalDate,
}}

// volumeSchema accepts the names older clients send for the same totals.
var volumeSchema = normalize.Schema{
	Aliases: map[string]string{
		"quantidadeSacas":  "sacas",
		"quantidade_sacas": "sacas",
		"receitaTotal":     "faturamento",
		"faturamentoTotal": "faturamento",
		"receita_total":    "faturamento",
		"dataFrete":        "data_frete",
	},
	Fields: normalize.Rules{"data_frete": optionalDate},
}

type FarmInput struct {
	Name          string      `json:"fazenda" validate:"required,min=3,max=255"`
	State         string      `json:"estado" validate:"required,oneof=SP MS MT"`
	Owner         string      `json:"proprietario" validate:"required,min=3,max=255"`
	Commodity     string      `json:"mercadoria" validate:"required,max=100"`
	Variety       *string     `json:"variedade" validate:"omitempty,max=100"`
	Season        string      `json:"safra" validate:"required,min=4,max=20"`
	PricePerTon   float64     `json:"preco_por_tonelada" validate:"gt=0"`
	AvgSackWeight *float64    `json:"peso_medio_saca" validate:"omitempty,gt=0"`
	SacksLoaded   int64       `json:"total_sacas_carregadas" validate:"gte=0"`
	TotalTons     float64     `json:"total_toneladas" validate:"gte=0"`
	TotalRevenue  float64     `json:"faturamento_total" validate:"gte=0"`
	LastShipment  *store.Date `json:"ultimo_frete"`
	HarvestDone   bool        `json:"colheita_finalizada"`
}

// defaultSackWeight is the usual grain sack, in kilograms.
const defaultSackWeight = 25

type FarmPatch struct {
	Name          *string     `json:"fazenda" validate:"omitempty,min=3,max=255"`
	State         *string     `json:"estado" validate:"omitempty,oneof=SP MS MT"`
	Owner         *string     `json:"proprietario" validate:"omitempty,min=3,max=255"`
	Commodity     *string     `json:"mercadoria" validate:"omitempty,max=100"`
	Variety       *string     `json:"variedade" validate:"omitempty,max=100"`
	Season        *string     `json:"safra" validate:"omitempty,min=4,max=20"`
	PricePerTon   *float64    `json:"preco_por_tonelada" validate:"omitempty,gt=0"`
	AvgSackWeight *float64    `json:"peso_medio_saca" validate:"omitempty,gt=0"`
	SacksLoaded   *int64      `json:"total_sacas_carregadas" validate:"omitempty,gte=0"`
	TotalTons     *float64    `json:"total_toneladas" validate:"omitempty,gte=0"`
	TotalRevenue  *float64    `json:"faturamento_total" validate:"omitempty,gte=0"`
	LastShipment  *store.Date `json:"ultimo_frete"`
	HarvestDone   *bool       `json:"colheita_finalizada"`
}

// VolumeInput is one shipment added to a farm outside freight creation.
// A missing date means today.
type VolumeInput struct {
	Sacks   int64       `json:"sacas" validate:"gte=0"`
	Tons    float64     `json:"toneladas" validate:"gt=0"`
	Revenue float64     `json:"faturamento" validate:"gte=0"`
	Date    *store.Date `json:"data_frete"`
}

type FarmService struct {
	base
}

func (s *FarmService) List(ctx context.Context, page store.Page) ([]store.Farm, int, error) {
	farms, total, err := s.store.Farms.List(ctx, page)
	if err != nil {
		return nil, 0, translate(err, "farm")
	}
	return farms, total, nil
}

func (s *FarmService) Get(ctx context.Context, id int64) (*store.Farm, error) {
	f, err := s.store.Farms.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "farm")
	}
	return f, nil
}

func (s *FarmService) Create(ctx context.Context, payload Payload) (*store.Farm, error) {
	var in FarmInput
	if err := s.decodeCreate(farmSchema, payload, &in); err != nil {
		return nil, err
	}

	f := &store.Farm{
		Name:          in.Name,
		State:         in.State,
		Owner:         in.Owner,
		Commodity:     in.Commodity,
		Variety:       in.Variety,
		Season:        in.Season,
		PricePerTon:   in.PricePerTon,
		AvgSackWeight: defaultSackWeight,
		SacksLoaded:   in.SacksLoaded,
		TotalTons:     in.TotalTons,
		TotalRevenue:  in.TotalRevenue,
		LastShipment:  in.LastShipment,
		HarvestDone:   in.HarvestDone,
	}
	if in.AvgSackWeight != nil {
		f.AvgSackWeight = *in.AvgSackWeight
	}

	err := s.withCode(ctx, sequence.Farm, store.ConstraintFarmCode, func(code string) error {
		f.Code = code
		return s.store.Farms.Insert(ctx, f)
	})
	if err != nil {
		return nil, translate(err, "farm")
	}
	return f, nil
}

func (s *FarmService) Update(ctx context.Context, id int64, payload Payload) (*store.Farm, error) {
	changes, err := s.decodePatch(farmSchema, payload, &FarmPatch{})
	if err != nil {
		return nil, err
	}
	if err := s.store.Farms.Update(ctx, id, changes); err != nil {
		return nil, translate(err, "farm")
	}
	return s.Get(ctx, id)
}

func (s *FarmService) Delete(ctx context.Context, id int64) error {
	return translate(s.store.Farms.Delete(ctx, id), "farm")
}

// IncrementVolume applies the same rollup freight creation does.
func (s *FarmService) IncrementVolume(ctx context.Context, id int64, payload Payload) (*store.Farm, error) {
	var in VolumeInput
	if err := s.decodeCreate(volumeSchema, payload, &in); err != nil {
		return nil, err
	}
	date := store.DateOf(s.now())
	if in.Date != nil {
		date = *in.Date
	}

	var updated *store.Farm
	err := s.store.WithTx(ctx, func(tx *store.Storage) error {
		if _, err := tx.Farms.GetByID(ctx, id); err != nil {
			return err
		}
		err := tx.Farms.AddVolume(ctx, id, store.FarmVolume{
			Sacks:   in.Sacks,
			Tons:    in.Tons,
			Revenue: in.Revenue,
			Date:    date,
		})
		if err != nil {
			return err
		}
		updated, err = tx.Farms.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "farm")
	}
	return updated, nil
}
