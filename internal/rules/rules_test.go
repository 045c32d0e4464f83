package rules

import (
	"reflect"
	"strings"
	"testing"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/store"
)

func ptr[T any](v T) *T { return &v }

func TestCheckTrailer(t *testing.T) {
	cases := []struct {
		vehicleType string
		plate       *string
		wantErr     bool
	}{
		{"CARRETA", nil, true},
		{"BITREM", ptr(""), true},
		{"rodotrem", nil, true},
		{"CARRETA", ptr("XYZ9A87"), false},
		{"TRUCADO", nil, false},
		{"TOCO", nil, false},
	}
	for _, tc := range cases {
		err := CheckTrailer(tc.vehicleType, tc.plate)
		if (err != nil) != tc.wantErr {
			t.Errorf("CheckTrailer(%s, %v) error = %v, wantErr %v", tc.vehicleType, tc.plate, err, tc.wantErr)
			continue
		}
		if err != nil && apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("CheckTrailer(%s) kind = %v, want validation", tc.vehicleType, apperr.KindOf(err))
		}
	}
}

func TestCheckBinding(t *testing.T) {
	if err := CheckBinding("terceirizado", nil); err == nil {
		t.Errorf("CheckBinding(terceirizado, nil) error = nil, want error")
	}
	if err := CheckBinding("agregado", ptr(int64(3))); err != nil {
		t.Errorf("CheckBinding(agregado, 3) error = %v, want nil", err)
	}
	if err := CheckBinding("proprio", nil); err != nil {
		t.Errorf("CheckBinding(proprio, nil) error = %v, want nil", err)
	}
}

func TestDeriveRevenue(t *testing.T) {
	if got := DeriveRevenue(nil, 10, 100); got != 1000 {
		t.Errorf("DeriveRevenue(nil, 10, 100) = %v, want 1000", got)
	}
	if got := DeriveRevenue(nil, 12.345, 98.7); got != 1218.45 {
		t.Errorf("DeriveRevenue(nil, 12.345, 98.7) = %v, want 1218.45", got)
	}
	if got := DeriveRevenue(ptr(500.0), 10, 100); got != 500 {
		t.Errorf("DeriveRevenue(500, 10, 100) = %v, want 500", got)
	}
}

func TestDeriveResult(t *testing.T) {
	if got := DeriveResult(1000, 0.1+0.2); got != 999.7 {
		t.Errorf("DeriveResult() = %v, want 999.7", got)
	}
}

func TestProfitMargin(t *testing.T) {
	if got := ProfitMargin(250, 1000); got != 25 {
		t.Errorf("ProfitMargin(250, 1000) = %v, want 25", got)
	}
	if got := ProfitMargin(1, 3); got != 33.33 {
		t.Errorf("ProfitMargin(1, 3) = %v, want 33.33", got)
	}
	if got := ProfitMargin(100, 0); got != 0 {
		t.Errorf("ProfitMargin(100, 0) = %v, want 0", got)
	}
}

func TestUniqueIDs(t *testing.T) {
	got := UniqueIDs([]int64{3, 1, 3, 2, 1})
	if want := []int64{3, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueIDs() = %v, want %v", got, want)
	}
}

func TestCheckSettlement(t *testing.T) {
	paid := int64(9)
	found := []store.SettlementState{{ID: 1}, {ID: 2, PaymentID: &paid}}

	if err := CheckSettlement([]int64{1}, found); err != nil {
		t.Errorf("CheckSettlement([1]) error = %v, want nil", err)
	}

	err := CheckSettlement([]int64{1, 2}, found)
	if apperr.KindOf(err) != apperr.KindBusinessRule || !strings.Contains(err.Error(), "already settled: 2") {
		t.Errorf("CheckSettlement([1 2]) error = %v, want already settled", err)
	}

	err = CheckSettlement([]int64{1, 5, 4}, found)
	if err == nil || !strings.Contains(err.Error(), "not found: 4, 5") {
		t.Errorf("CheckSettlement([1 5 4]) error = %v, want not found 4, 5", err)
	}
}
