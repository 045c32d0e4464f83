package store

import (
	"context"
	"fmt"
)

type DriverStore struct {
	db Queryer
}

var DriverFields = []string{
	"nome", "documento", "telefone", "email", "endereco", "cnh", "cnh_validade", "cnh_categoria",
	"status", "tipo", "data_admissao", "data_desligamento", "tipo_pagamento", "chave_pix_tipo",
	"chave_pix", "banco", "agencia", "conta", "tipo_conta", "receita_gerada", "viagens_realizadas",
}

const driverColumns = `id, codigo, nome, documento, telefone, email, endereco, cnh, cnh_validade,
	cnh_categoria, status, tipo, data_admissao, data_desligamento, tipo_pagamento, chave_pix_tipo,
	chave_pix, banco, agencia, conta, tipo_conta, receita_gerada, viagens_realizadas,
	created_at, updated_at`

func (s *DriverStore) List(ctx context.Context, page Page) ([]Driver, int, error) {
	drivers := []Driver{}
	total, err := selectPage(ctx, s.db, &drivers, driverColumns, "motoristas", "", "nome", page)
	if err != nil {
		return nil, 0, err
	}
	return drivers, total, nil
}

func (s *DriverStore) GetByID(ctx context.Context, id int64) (*Driver, error) {
	var d Driver
	query := `SELECT ` + driverColumns + ` FROM motoristas WHERE id = $1`
	if err := getOne(ctx, s.db, &d, query, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DriverStore) Insert(ctx context.Context, d *Driver) error {
	query := `INSERT INTO motoristas (
		codigo, nome, documento, telefone, email, endereco, cnh, cnh_validade, cnh_categoria,
		status, tipo, data_admissao, data_desligamento, tipo_pagamento, chave_pix_tipo, chave_pix,
		banco, agencia, conta, tipo_conta, receita_gerada, viagens_realizadas
	) VALUES (
		:codigo, :nome, :documento, :telefone, :email, :endereco, :cnh, :cnh_validade, :cnh_categoria,
		:status, :tipo, :data_admissao, :data_desligamento, :tipo_pagamento, :chave_pix_tipo, :chave_pix,
		:banco, :agencia, :conta, :tipo_conta, :receita_gerada, :viagens_realizadas
	) RETURNING id, created_at, updated_at`

	if err := insertReturning(ctx, s.db, query, d, &d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert driver: %w", err)
	}
	return nil
}

func (s *DriverStore) Update(ctx context.Context, id int64, changes Changes) error {
	return updateByID(ctx, s.db, "motoristas", id, changes, DriverFields)
}

func (s *DriverStore) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "motoristas", id)
}
