package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type CostStore struct {
	db Queryer
}

var CostFields = []string{
	"frete_id", "tipo", "descricao", "valor", "data", "comprovante", "observacoes",
	"motorista", "caminhao", "rota", "litros", "tipo_combustivel",
}

const costColumns = `id, frete_id, tipo, descricao, valor, data, comprovante, observacoes,
	motorista, caminhao, rota, litros, tipo_combustivel, created_at, updated_at`

func (s *CostStore) List(ctx context.Context, page Page) ([]Cost, int, error) {
	costs := []Cost{}
	total, err := selectPage(ctx, s.db, &costs, costColumns, "custos", "", "data DESC, id DESC", page)
	if err != nil {
		return nil, 0, err
	}
	return costs, total, nil
}

func (s *CostStore) ListByFreight(ctx context.Context, freightID int64) ([]Cost, error) {
	costs := []Cost{}
	query := `SELECT ` + costColumns + ` FROM custos WHERE frete_id = $1 ORDER BY data DESC, id DESC`
	if err := sqlx.SelectContext(ctx, s.db, &costs, query, freightID); err != nil {
		return nil, fmt.Errorf("failed to query costs of freight %d: %w", freightID, err)
	}
	return costs, nil
}

func (s *CostStore) GetByID(ctx context.Context, id int64) (*Cost, error) {
	var c Cost
	query := `SELECT ` + costColumns + ` FROM custos WHERE id = $1`
	if err := getOne(ctx, s.db, &c, query, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CostStore) Insert(ctx context.Context, c *Cost) error {
	query := `INSERT INTO custos (
		frete_id, tipo, descricao, valor, data, comprovante, observacoes,
		motorista, caminhao, rota, litros, tipo_combustivel
	) VALUES (
		:frete_id, :tipo, :descricao, :valor, :data, :comprovante, :observacoes,
		:motorista, :caminhao, :rota, :litros, :tipo_combustivel
	) RETURNING id, created_at, updated_at`

	if err := insertReturning(ctx, s.db, query, c, &c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert cost: %w", err)
	}
	return nil
}

func (s *CostStore) Update(ctx context.Context, id int64, changes Changes) error {
	return updateByID(ctx, s.db, "custos", id, changes, CostFields)
}

func (s *CostStore) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "custos", id)
}
