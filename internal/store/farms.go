package store

import (
	"context"
	"fmt"
)

type FarmStore struct {
	db Queryer
}

var FarmFields = []string{
	"fazenda", "estado", "proprietario", "mercadoria", "variedade", "safra", "preco_por_tonelada",
	"peso_medio_saca", "total_sacas_carregadas", "total_toneladas", "faturamento_total",
	"ultimo_frete", "colheita_finalizada",
}

const farmColumns = `id, codigo, fazenda, estado, proprietario, mercadoria, variedade, safra,
	preco_por_tonelada, peso_medio_saca, total_sacas_carregadas, total_toneladas,
	faturamento_total, ultimo_frete, colheita_finalizada, created_at, updated_at`

func (s *FarmStore) List(ctx context.Context, page Page) ([]Farm, int, error) {
	farms := []Farm{}
	total, err := selectPage(ctx, s.db, &farms, farmColumns, "fazendas", "", "fazenda", page)
	if err != nil {
		return nil, 0, err
	}
	return farms, total, nil
}

func (s *FarmStore) GetByID(ctx context.Context, id int64) (*Farm, error) {
	var f Farm
	query := `SELECT ` + farmColumns + ` FROM fazendas WHERE id = $1`
	if err := getOne(ctx, s.db, &f, query, id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FarmStore) Insert(ctx context.Context, f *Farm) error {
	query := `INSERT INTO fazendas (
		codigo, fazenda, estado, proprietario, mercadoria, variedade, safra, preco_por_tonelada,
		peso_medio_saca, total_sacas_carregadas, total_toneladas, faturamento_total,
		ultimo_frete, colheita_finalizada
	) VALUES (
		:codigo, :fazenda, :estado, :proprietario, :mercadoria, :variedade, :safra, :preco_por_tonelada,
		:peso_medio_saca, :total_sacas_carregadas, :total_toneladas, :faturamento_total,
		:ultimo_frete, :colheita_finalizada
	) RETURNING id, created_at, updated_at`

	if err := insertReturning(ctx, s.db, query, f, &f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert farm: %w", err)
	}
	return nil
}

func (s *FarmStore) Update(ctx context.Context, id int64, changes Changes) error {
	return updateByID(ctx, s.db, "fazendas", id, changes, FarmFields)
}

func (s *FarmStore) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "fazendas", id)
}

// AddVolume adds one shipment to the farm's running totals and moves its
// last-shipment date.
func (s *FarmStore) AddVolume(ctx context.Context, id int64, v FarmVolume) error {
	query := `UPDATE fazendas SET
		total_sacas_carregadas = COALESCE(total_sacas_carregadas, 0) + $1,
		total_toneladas = COALESCE(total_toneladas, 0) + $2,
		faturamento_total = COALESCE(faturamento_total, 0) + $3,
		ultimo_frete = $4,
		updated_at = NOW()
	WHERE id = $5`

	res, err := s.db.ExecContext(ctx, query, v.Sacks, v.Tons, v.Revenue, v.Date, id)
	if err != nil {
		return fmt.Errorf("failed to add volume to farm %d: %w", id, err)
	}
	return expectAffected(res, "fazendas", id)
}
