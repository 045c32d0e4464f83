package service

import (
	"context"
	"time"

	"github.com/farxc/gestao-fretes/internal/cache"
	"github.com/farxc/gestao-fretes/internal/rules"
	"github.com/farxc/gestao-fretes/internal/store"
)

const (
	KeyKPIs       = "dashboard:kpis"
	KeyRouteStats = "dashboard:estatisticas-rotas"
)

const defaultCacheTTL = time.Minute

// DashboardService serves the read-only aggregates through a best-effort
// read-through cache.
type DashboardService struct {
	base
	ttl time.Duration
}

func (s *DashboardService) cacheTTL() time.Duration {
	if s.ttl <= 0 {
		return defaultCacheTTL
	}
	return s.ttl
}

// KPIs returns the fleet-wide totals. The boolean reports a cache hit.
func (s *DashboardService) KPIs(ctx context.Context) (store.KPIs, bool, error) {
	k, hit, err := cache.Remember(ctx, s.cache, s.log, KeyKPIs, s.cacheTTL(), s.computeKPIs)
	if err != nil {
		return store.KPIs{}, false, translate(err, "dashboard")
	}
	return k, hit, nil
}

// RouteStats returns per-route totals ordered by profit, highest first.
func (s *DashboardService) RouteStats(ctx context.Context) ([]store.RouteStat, bool, error) {
	stats, hit, err := cache.Remember(ctx, s.cache, s.log, KeyRouteStats, s.cacheTTL(), s.store.Dashboard.RouteStats)
	if err != nil {
		return nil, false, translate(err, "dashboard")
	}
	return stats, hit, nil
}

func (s *DashboardService) computeKPIs(ctx context.Context) (store.KPIs, error) {
	k, err := s.store.Dashboard.KPIs(ctx)
	if err != nil {
		return store.KPIs{}, err
	}
	k.ProfitMargin = rules.ProfitMargin(k.Profit, k.Revenue)
	return k, nil
}

// Warm recomputes both aggregates and overwrites the cached copies.
func (s *DashboardService) Warm(ctx context.Context) error {
	k, err := s.computeKPIs(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, KeyKPIs, k, s.cacheTTL()); err != nil {
		s.log.Warn(component, "warm %s failed: %v", KeyKPIs, err)
	}

	stats, err := s.store.Dashboard.RouteStats(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, KeyRouteStats, stats, s.cacheTTL()); err != nil {
		s.log.Warn(component, "warm %s failed: %v", KeyRouteStats, err)
	}
	return nil
}

// CachePing reports whether the cache backend answers.
func (s *DashboardService) CachePing(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
