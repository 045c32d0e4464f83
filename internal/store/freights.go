package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type FreightStore struct {
	db Queryer
}

// FreightFields leaves out codigo_frete and pagamento_id: the code is
// generated once and the payment link is only set by settlement.
var FreightFields = []string{
	"origem", "destino", "motorista_id", "motorista_nome", "caminhao_id", "caminhao_placa",
	"ticket", "numero_nota_fiscal", "fazenda_id", "fazenda_nome", "mercadoria", "variedade",
	"data_frete", "quantidade_sacas", "toneladas", "valor_por_tonelada", "receita", "custos",
	"resultado",
}

const freightColumns = `id, codigo_frete, origem, destino, motorista_id, motorista_nome,
	caminhao_id, caminhao_placa, ticket, numero_nota_fiscal, fazenda_id, fazenda_nome, mercadoria,
	variedade, data_frete, quantidade_sacas, toneladas, valor_por_tonelada, receita, custos,
	resultado, pagamento_id, created_at, updated_at`

func (f FreightFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.From != nil {
		add("data_frete >= $%d", *f.From)
	}
	if f.To != nil {
		add("data_frete <= $%d", *f.To)
	}
	if f.DriverID != nil {
		add("motorista_id = $%d", *f.DriverID)
	}
	if f.FarmID != nil {
		add("fazenda_id = $%d", *f.FarmID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (s *FreightStore) List(ctx context.Context, filter FreightFilter, page Page) ([]Freight, int, error) {
	where, args := filter.where()

	freights := []Freight{}
	total, err := selectPage(ctx, s.db, &freights, freightColumns, "fretes", where,
		"data_frete DESC, id DESC", page, args...)
	if err != nil {
		return nil, 0, err
	}
	return freights, total, nil
}

func (s *FreightStore) ListPending(ctx context.Context, driverID *int64) ([]Freight, error) {
	query := `SELECT ` + freightColumns + ` FROM fretes WHERE pagamento_id IS NULL`
	var args []any
	if driverID != nil {
		query += ` AND motorista_id = $1`
		args = append(args, *driverID)
	}
	query += ` ORDER BY data_frete DESC, id DESC`

	freights := []Freight{}
	if err := sqlx.SelectContext(ctx, s.db, &freights, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query pending freights: %w", err)
	}
	return freights, nil
}

func (s *FreightStore) GetByID(ctx context.Context, id int64) (*Freight, error) {
	var f Freight
	query := `SELECT ` + freightColumns + ` FROM fretes WHERE id = $1`
	if err := getOne(ctx, s.db, &f, query, id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FreightStore) Insert(ctx context.Context, f *Freight) error {
	query := `INSERT INTO fretes (
		codigo_frete, origem, destino, motorista_id, motorista_nome, caminhao_id, caminhao_placa,
		ticket, numero_nota_fiscal, fazenda_id, fazenda_nome, mercadoria, variedade, data_frete,
		quantidade_sacas, toneladas, valor_por_tonelada, receita, custos, resultado
	) VALUES (
		:codigo_frete, :origem, :destino, :motorista_id, :motorista_nome, :caminhao_id, :caminhao_placa,
		:ticket, :numero_nota_fiscal, :fazenda_id, :fazenda_nome, :mercadoria, :variedade, :data_frete,
		:quantidade_sacas, :toneladas, :valor_por_tonelada, :receita, :custos, :resultado
	) RETURNING id, created_at, updated_at`

	if err := insertReturning(ctx, s.db, query, f, &f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert freight: %w", err)
	}
	return nil
}

func (s *FreightStore) Update(ctx context.Context, id int64, changes Changes) error {
	return updateByID(ctx, s.db, "fretes", id, changes, FreightFields)
}

func (s *FreightStore) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "fretes", id)
}

// AddCost adds amount to the freight's costs and recomputes its result
// from the stored revenue in the same statement. A negative amount
// reverses an earlier posting.
func (s *FreightStore) AddCost(ctx context.Context, id int64, amount float64) error {
	query := `UPDATE fretes SET
		custos = COALESCE(custos, 0) + $1,
		resultado = COALESCE(receita, 0) - (COALESCE(custos, 0) + $1),
		updated_at = NOW()
	WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to roll up cost on freight %d: %w", id, err)
	}
	return expectAffected(res, "fretes", id)
}

// LockForSettlement reads the settlement state of the given freights and
// locks their rows until the surrounding transaction ends. Missing ids
// are simply absent from the result.
func (s *FreightStore) LockForSettlement(ctx context.Context, ids []int64) ([]SettlementState, error) {
	states := []SettlementState{}
	query := `SELECT id, pagamento_id FROM fretes WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	if err := sqlx.SelectContext(ctx, s.db, &states, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to lock freights for settlement: %w", err)
	}
	return states, nil
}

// Settle stamps paymentID on every listed freight that is still
// unsettled and returns how many rows changed.
func (s *FreightStore) Settle(ctx context.Context, paymentID int64, ids []int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE fretes SET pagamento_id = $1, updated_at = NOW()
		WHERE id = ANY($2) AND pagamento_id IS NULL`,
		paymentID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to settle freights for payment %d: %w", paymentID, err)
	}
	return res.RowsAffected()
}

func (s *FreightStore) Unsettle(ctx context.Context, paymentID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE fretes SET pagamento_id = NULL, updated_at = NOW() WHERE pagamento_id = $1`,
		paymentID)
	if err != nil {
		return 0, fmt.Errorf("failed to unsettle freights of payment %d: %w", paymentID, err)
	}
	return res.RowsAffected()
}
