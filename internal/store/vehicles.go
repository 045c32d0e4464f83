package store

import (
	"context"
	"fmt"
)

type VehicleStore struct {
	db Queryer
}

// VehicleFields are the columns a vehicle update may touch, in
// assignment order.
var VehicleFields = []string{
	"placa", "placa_carreta", "modelo", "ano_fabricacao", "status", "motorista_fixo_id",
	"capacidade_toneladas", "km_atual", "tipo_combustivel", "tipo_veiculo", "renavam",
	"renavam_carreta", "chassi", "registro_antt", "validade_seguro", "validade_licenciamento",
	"proprietario_tipo", "ultima_manutencao_data", "proxima_manutencao_km",
}

const vehicleColumns = `id, codigo, placa, placa_carreta, modelo, ano_fabricacao, status,
	motorista_fixo_id, capacidade_toneladas, km_atual, tipo_combustivel, tipo_veiculo, renavam,
	renavam_carreta, chassi, registro_antt, validade_seguro, validade_licenciamento,
	proprietario_tipo, ultima_manutencao_data, proxima_manutencao_km, created_at, updated_at`

func (s *VehicleStore) List(ctx context.Context, filter VehicleFilter, page Page) ([]Vehicle, int, error) {
	where := ""
	if filter.OnlyUnbound {
		where = "WHERE motorista_fixo_id IS NULL"
	}

	vehicles := []Vehicle{}
	total, err := selectPage(ctx, s.db, &vehicles, vehicleColumns, "frota", where, "placa", page)
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (s *VehicleStore) GetByID(ctx context.Context, id int64) (*Vehicle, error) {
	var v Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM frota WHERE id = $1`
	if err := getOne(ctx, s.db, &v, query, id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VehicleStore) GetByDriver(ctx context.Context, driverID int64) (*Vehicle, error) {
	var v Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM frota WHERE motorista_fixo_id = $1 ORDER BY id LIMIT 1`
	if err := getOne(ctx, s.db, &v, query, driverID); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VehicleStore) Insert(ctx context.Context, v *Vehicle) error {
	query := `INSERT INTO frota (
		codigo, placa, placa_carreta, modelo, ano_fabricacao, status, motorista_fixo_id,
		capacidade_toneladas, km_atual, tipo_combustivel, tipo_veiculo, renavam, renavam_carreta,
		chassi, registro_antt, validade_seguro, validade_licenciamento, proprietario_tipo,
		ultima_manutencao_data, proxima_manutencao_km
	) VALUES (
		:codigo, :placa, :placa_carreta, :modelo, :ano_fabricacao, :status, :motorista_fixo_id,
		:capacidade_toneladas, :km_atual, :tipo_combustivel, :tipo_veiculo, :renavam, :renavam_carreta,
		:chassi, :registro_antt, :validade_seguro, :validade_licenciamento, :proprietario_tipo,
		:ultima_manutencao_data, :proxima_manutencao_km
	) RETURNING id, created_at, updated_at`

	if err := insertReturning(ctx, s.db, query, v, &v.ID, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

func (s *VehicleStore) Update(ctx context.Context, id int64, changes Changes) error {
	return updateByID(ctx, s.db, "frota", id, changes, VehicleFields)
}

func (s *VehicleStore) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, s.db, "frota", id)
}

func (s *VehicleStore) BindDriver(ctx context.Context, vehicleID, driverID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE frota SET motorista_fixo_id = $1, updated_at = NOW() WHERE id = $2`,
		driverID, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to bind driver %d to vehicle %d: %w", driverID, vehicleID, err)
	}
	return expectAffected(res, "frota", vehicleID)
}

// ReleaseDriver clears the driver's binding from every vehicle other than
// exceptVehicleID.
func (s *VehicleStore) ReleaseDriver(ctx context.Context, driverID, exceptVehicleID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE frota SET motorista_fixo_id = NULL, updated_at = NOW()
		WHERE motorista_fixo_id = $1 AND id <> $2`,
		driverID, exceptVehicleID)
	if err != nil {
		return fmt.Errorf("failed to release driver %d: %w", driverID, err)
	}
	return nil
}
