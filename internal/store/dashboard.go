package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type DashboardStore struct {
	db Queryer
}

/*
The dashboard store only reads. KPIs sums the freight ledger and counts
active drivers and available vehicles; RouteStats groups the ledger by
origin and destination. Profit margin is derived by the caller.
*/

func (s *DashboardStore) KPIs(ctx context.Context) (KPIs, error) {
	query := `
		WITH ledger AS (
			SELECT
				COALESCE(SUM(receita), 0) AS receita_total,
				COALESCE(SUM(custos), 0) AS custos_total,
				COALESCE(SUM(resultado), 0) AS lucro_total,
				COUNT(*) AS total_fretes
			FROM fretes
		)
		SELECT
			l.receita_total,
			l.custos_total,
			l.lucro_total,
			l.total_fretes,
			(SELECT COUNT(*) FROM motoristas WHERE status = $1) AS motoristas_ativos,
			(SELECT COUNT(*) FROM frota WHERE status = $2) AS caminhoes_disponiveis
		FROM ledger l`

	var k KPIs
	if err := sqlx.GetContext(ctx, s.db, &k, query, DriverStatusActive, VehicleStatusAvailable); err != nil {
		return KPIs{}, fmt.Errorf("failed to query dashboard kpis: %w", err)
	}
	return k, nil
}

func (s *DashboardStore) RouteStats(ctx context.Context) ([]RouteStat, error) {
	query := `
		SELECT
			origem,
			destino,
			COUNT(*) AS total_fretes,
			COALESCE(SUM(receita), 0) AS receita_total,
			COALESCE(SUM(custos), 0) AS custos_total,
			COALESCE(SUM(resultado), 0) AS lucro_total
		FROM fretes
		GROUP BY origem, destino
		ORDER BY lucro_total DESC, origem, destino`

	stats := []RouteStat{}
	if err := sqlx.SelectContext(ctx, s.db, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to query route statistics: %w", err)
	}
	return stats, nil
}
