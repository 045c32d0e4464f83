// Package rules holds the cross-entity business rules that decide whether
// a write may proceed and what derived values it must carry.
package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/shopspring/decimal"
)

// RequiresTrailer reports whether vehicles of this type haul a trailer
// and therefore need a trailer plate.
func RequiresTrailer(vehicleType string) bool {
	switch strings.ToUpper(vehicleType) {
	case store.VehicleTypeTrailer, store.VehicleTypeBiTrain, store.VehicleTypeRoadTrain:
		return true
	}
	return false
}

// CheckTrailer rejects a trailer-hauling vehicle type without a trailer
// plate.
func CheckTrailer(vehicleType string, trailerPlate *string) error {
	if !RequiresTrailer(vehicleType) {
		return nil
	}
	if trailerPlate != nil && strings.TrimSpace(*trailerPlate) != "" {
		return nil
	}
	return apperr.Field("placa_carreta", "required_for_type",
		fmt.Sprintf("trailer plate is required for vehicle type %s", strings.ToUpper(vehicleType)))
}

// NeedsVehicleBinding reports whether drivers of this employment type
// must be bound to a vehicle.
func NeedsVehicleBinding(driverType string) bool {
	return driverType == store.DriverTypeOutsourced || driverType == store.DriverTypeAggregated
}

// CheckBinding rejects an outsourced or aggregated driver without a
// vehicle.
func CheckBinding(driverType string, vehicleID *int64) error {
	if !NeedsVehicleBinding(driverType) || vehicleID != nil {
		return nil
	}
	return apperr.Field("veiculo_id", "required_for_type",
		fmt.Sprintf("vehicle is required for %s drivers", driverType))
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// DeriveRevenue returns the explicit revenue when given, otherwise
// tonnage times rate rounded to cents.
func DeriveRevenue(explicit *float64, tons, rate float64) float64 {
	if explicit != nil {
		return *explicit
	}
	return round2(decimal.NewFromFloat(tons).Mul(decimal.NewFromFloat(rate)))
}

// DeriveResult returns revenue minus costs rounded to cents.
func DeriveResult(revenue, costs float64) float64 {
	return round2(decimal.NewFromFloat(revenue).Sub(decimal.NewFromFloat(costs)))
}

// ProfitMargin is profit over revenue as a percentage with two decimals,
// or 0 without revenue.
func ProfitMargin(profit, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return round2(decimal.NewFromFloat(profit).Div(decimal.NewFromFloat(revenue)).Mul(decimal.NewFromInt(100)))
}

// UniqueIDs drops repeated ids, keeping first occurrences in order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CheckSettlement verifies that every requested freight was found and is
// still unsettled. found is the locked state read inside the payment's
// transaction.
func CheckSettlement(requested []int64, found []store.SettlementState) error {
	byID := make(map[int64]store.SettlementState, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	var missing, settled []int64
	for _, id := range requested {
		s, ok := byID[id]
		switch {
		case !ok:
			missing = append(missing, id)
		case s.PaymentID != nil:
			settled = append(settled, id)
		}
	}

	if len(missing) > 0 {
		return apperr.Rule("freights not found: %s", joinIDs(missing))
	}
	if len(settled) > 0 {
		return apperr.Rule("freights already settled: %s", joinIDs(settled))
	}
	return nil
}

func joinIDs(ids []int64) string {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
