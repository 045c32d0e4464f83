package store

import (
	"context"
	"fmt"
	"time"
)

type PaymentStore struct {
	db Queryer
}

// PaymentFields leaves out fretes_incluidos and quantidade_fretes: the
// settled freight set is fixed when the payment is created.
var PaymentFields = []string{
	"motorista_id", "motorista_nome", "periodo_fretes", "total_toneladas", "valor_por_tonelada",
	"valor_total", "data_pagamento", "status", "metodo_pagamento", "comprovante_nome",
	"comprovante_url", "comprovante_data_upload", "observacoes",
}

const paymentColumns = `id, codigo_pagamento, motorista_id, motorista_nome, periodo_fretes,
	quantidade_fretes, fretes_incluidos, total_toneladas, valor_por_tonelada, valor_total,
	data_pagamento, status, metodo_pagamento, comprovante_nome, comprovante_url,
	comprovante_data_upload, observacoes, created_at, updated_at`

func (s *PaymentStore) List(ctx context.Context, page Page) ([]Payment, int, error) {
	payments := []Payment{}
	total, err := selectPage(ctx, s.db, &payments, paymentColumns, "pagamentos", "",
		"data_pagamento DESC, id DESC", page)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (s *PaymentStore) GetByID(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	query := `SELECT ` + paymentColumns + ` FROM pagamentos WHERE id = $1`
	if err := getOne(ctx, s.db, &p, query, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentStore) Insert(ctx context.Context, p *Payment) error {
	query := `INSERT INTO pagamentos (
		codigo_pagamento, motorista_id, motorista_nome, periodo_fretes, quantidade_fretes,
		fretes_incluidos, total_toneladas, valor_por_tonelada, valor_total, data_pagamento,
		status, metodo_pagamento, observacoes
	) VALUES (
		:codigo_pagamento, :motorista_id, :motorista_nome, :periodo_fretes, :quantidade_fretes,
		:fretes_incluidos, :total_toneladas, :valor_por_tonelada, :valor_total, :data_pagamento,
		:status, :metodo_pagamento, :observacoes
	) RETURNING id, created_at, updated_at`

	if err := insertReturning(ctx, s.db, query, p, &p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *PaymentStore) Update(ctx context.Context, id int64, changes Changes) error {
	return updateByID(ctx, s.db, "pagamentos", id, changes, PaymentFields)
}

func (s *PaymentStore) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "pagamentos", id)
}

func (s *PaymentStore) SetReceipt(ctx context.Context, id int64, name, url string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pagamentos SET
			comprovante_nome = $1,
			comprovante_url = $2,
			comprovante_data_upload = $3,
			updated_at = NOW()
		WHERE id = $4`,
		name, url, at, id)
	if err != nil {
		return fmt.Errorf("failed to stamp receipt on payment %d: %w", id, err)
	}
	return expectAffected(res, "pagamentos", id)
}
