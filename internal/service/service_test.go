package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/farxc/gestao-fretes/internal/apperr"
	"github.com/farxc/gestao-fretes/internal/cache"
	"github.com/farxc/gestao-fretes/internal/sequence"
	"github.com/farxc/gestao-fretes/internal/store"
	"github.com/farxc/gestao-fretes/internal/store/memstore"
	"github.com/lib/pq"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newServices(t *testing.T) (*Services, *memstore.DB) {
	t.Helper()
	st, db := memstore.New()
	svc := New(Deps{Store: st, Cache: cache.NewMemory(), Now: func() time.Time { return testNow }})
	return svc, db
}

func wantKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want kind %d", want)
	}
	if got := apperr.KindOf(err); got != want {
		t.Fatalf("error kind = %d (%v), want %d", got, err, want)
	}
}

func mustVehicle(t *testing.T, svc *Services, plate string) *store.Vehicle {
	t.Helper()
	v, err := svc.Vehicles.Create(context.Background(), Payload{
		"placa": plate, "modelo": "Volvo FH 540", "tipo_veiculo": "trucado",
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return v
}

func mustDriver(t *testing.T, svc *Services, document string) *store.Driver {
	t.Helper()
	d, err := svc.Drivers.Create(context.Background(), Payload{
		"nome": "João da Silva", "documento": document, "tipo": "proprio",
	})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	return d
}

func mustFarm(t *testing.T, svc *Services) *store.Farm {
	t.Helper()
	f, err := svc.Farms.Create(context.Background(), Payload{
		"fazenda": "Boa Vista", "estado": "mt", "proprietario": "Carlos Souza",
		"mercadoria": "soja", "safra": "2025/2026", "preco_por_tonelada": 100,
	})
	if err != nil {
		t.Fatalf("create farm: %v", err)
	}
	return f
}

func freightPayload(driverID, vehicleID int64) Payload {
	return Payload{
		"origem": "Sorriso", "destino": "Santos",
		"motorista_id": driverID, "caminhao_id": vehicleID,
		"mercadoria": "soja", "dataFrete": "10-03-2026",
		"quantidade_sacas": 200, "toneladas": 10, "valor_por_tonelada": 100,
	}
}

type fleet struct {
	svc     *Services
	db      *memstore.DB
	driver  *store.Driver
	vehicle *store.Vehicle
}

func newFleet(t *testing.T) fleet {
	svc, db := newServices(t)
	return fleet{
		svc:     svc,
		db:      db,
		driver:  mustDriver(t, svc, "529.982.247-25"),
		vehicle: mustVehicle(t, svc, "abc1d23"),
	}
}

func (f fleet) freight(t *testing.T) *store.Freight {
	t.Helper()
	fr, err := f.svc.Freights.Create(context.Background(), freightPayload(f.driver.ID, f.vehicle.ID))
	if err != nil {
		t.Fatalf("create freight: %v", err)
	}
	return fr
}

func TestVehicleCreate_TrailerRule(t *testing.T) {
	cases := []struct {
		vehicleType string
		trailer     any
		wantErr     bool
	}{
		{"CARRETA", nil, true},
		{"BITREM", "", true},
		{"rodotrem", nil, true},
		{"CARRETA", "XYZ9876", false},
		{"TRUCADO", nil, false},
		{"TOCO", nil, false},
	}

	for i, tc := range cases {
		svc, _ := newServices(t)
		payload := Payload{"placa": "ABC1234", "modelo": "Scania R450", "tipo_veiculo": tc.vehicleType}
		if tc.trailer != nil {
			payload["placa_carreta"] = tc.trailer
		}

		_, err := svc.Vehicles.Create(context.Background(), payload)
		if tc.wantErr {
			wantKind(t, err, apperr.KindValidation)
			e, _ := apperr.As(err)
			if len(e.Fields) != 1 || e.Fields[0].Field != "placa_carreta" {
				t.Errorf("case %d: fields = %+v, want placa_carreta", i, e.Fields)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %d: Create(%s) error = %v, want nil", i, tc.vehicleType, err)
		}
	}
}

func TestVehicleCreate_DefaultsAndCode(t *testing.T) {
	svc, _ := newServices(t)
	v := mustVehicle(t, svc, "abc-1234")

	if v.Code != "FROTA-001" {
		t.Errorf("Code = %q, want FROTA-001", v.Code)
	}
	if v.Plate != "ABC-1234" || v.VehicleType != "TRUCADO" {
		t.Errorf("Plate, VehicleType = %q, %q, want upper-cased", v.Plate, v.VehicleType)
	}
	if v.Status != store.VehicleStatusAvailable || v.FuelType != store.FuelS10 || v.OwnershipType != store.OwnershipOwned {
		t.Errorf("defaults = %q/%q/%q", v.Status, v.FuelType, v.OwnershipType)
	}
}

func TestVehicleUpdate_TrailerUsesStoredPlate(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	bare := mustVehicle(t, svc, "AAA1111")
	_, err := svc.Vehicles.Update(ctx, bare.ID, Payload{"tipo_veiculo": "CARRETA"})
	wantKind(t, err, apperr.KindValidation)

	withTrailer, err := svc.Vehicles.Create(ctx, Payload{
		"placa": "BBB2222", "placa_carreta": "CCC3333", "modelo": "Volvo FH", "tipo_veiculo": "TRUCADO",
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.Vehicles.Update(ctx, withTrailer.ID, Payload{"tipo_veiculo": "CARRETA"})
	if err != nil {
		t.Fatalf("Update() error = %v, want nil", err)
	}
	if got.VehicleType != "CARRETA" {
		t.Errorf("VehicleType = %q, want CARRETA", got.VehicleType)
	}

	_, err = svc.Vehicles.Update(ctx, withTrailer.ID, Payload{"placa_carreta": ""})
	wantKind(t, err, apperr.KindValidation)
}

func TestVehicleUpdate_StoredTrailerTypeNeedsPlate(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	legacy := &store.Vehicle{Code: "FROTA-900", Plate: "DDD4D44", Model: "Scania R450", VehicleType: "BITREM"}
	if err := svc.Vehicles.store.Vehicles.Insert(ctx, legacy); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Vehicles.Update(ctx, legacy.ID, Payload{"modelo": "Scania R500"})
	wantKind(t, err, apperr.KindValidation)
	if e, _ := apperr.As(err); len(e.Fields) != 1 || e.Fields[0].Field != "placa_carreta" {
		t.Errorf("fields = %+v, want one on placa_carreta", e.Fields)
	}

	got, err := svc.Vehicles.Update(ctx, legacy.ID, Payload{"modelo": "Scania R500", "placa_carreta": "EEE5E55"})
	if err != nil {
		t.Fatalf("Update() error = %v, want nil", err)
	}
	if got.Model != "SCANIA R500" || got.TrailerPlate == nil || *got.TrailerPlate != "EEE5E55" {
		t.Errorf("Model, TrailerPlate = %q, %v, want SCANIA R500, EEE5E55", got.Model, got.TrailerPlate)
	}
}

func TestVehicleUpdate_NoRecognisedFields(t *testing.T) {
	svc, _ := newServices(t)
	v := mustVehicle(t, svc, "ABC1234")

	_, err := svc.Vehicles.Update(context.Background(), v.ID, Payload{"cor": "azul", "codigo": "FROTA-999"})
	wantKind(t, err, apperr.KindValidation)
	if e, _ := apperr.As(err); e.Code != apperr.CodeNoFieldsToUpdate {
		t.Errorf("Code = %q, want %q", e.Code, apperr.CodeNoFieldsToUpdate)
	}
}

func TestVehicleUpdate_NotFound(t *testing.T) {
	svc, _ := newServices(t)
	_, err := svc.Vehicles.Update(context.Background(), 42, Payload{"modelo": "Volvo"})
	wantKind(t, err, apperr.KindNotFound)
}

func TestVehicleCreate_DuplicatePlate(t *testing.T) {
	svc, _ := newServices(t)
	mustVehicle(t, svc, "ABC1234")

	_, err := svc.Vehicles.Create(context.Background(), Payload{
		"placa": "abc1234", "modelo": "Volvo", "tipo_veiculo": "TOCO",
	})
	wantKind(t, err, apperr.KindConflict)
}

func TestDriverCreate_BindingRequired(t *testing.T) {
	svc, _ := newServices(t)
	_, err := svc.Drivers.Create(context.Background(), Payload{
		"nome": "Pedro Alves", "documento": "11144477735", "tipo": "terceirizado",
	})
	wantKind(t, err, apperr.KindValidation)
}

func TestDriverCreate_UnknownVehicle(t *testing.T) {
	svc, _ := newServices(t)
	_, err := svc.Drivers.Create(context.Background(), Payload{
		"nome": "Pedro Alves", "documento": "11144477735", "tipo": "agregado", "veiculo_id": 99,
	})
	wantKind(t, err, apperr.KindNotFound)
}

func TestDriverBinding_OneVehiclePerDriver(t *testing.T) {
	svc, db := newServices(t)
	ctx := context.Background()
	first := mustVehicle(t, svc, "AAA1111")
	second := mustVehicle(t, svc, "BBB2222")

	d, err := svc.Drivers.Create(ctx, Payload{
		"nome": "Pedro Alves", "documento": "11144477735", "tipo": "agregado", "veiculo_id": first.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.BoundVehicle == nil || d.BoundVehicle.ID != first.ID {
		t.Fatalf("BoundVehicle = %+v, want vehicle %d", d.BoundVehicle, first.ID)
	}

	d, err = svc.Drivers.Update(ctx, d.ID, Payload{"veiculo_id": second.ID})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if d.BoundVehicle == nil || d.BoundVehicle.ID != second.ID {
		t.Errorf("BoundVehicle = %+v, want vehicle %d", d.BoundVehicle, second.ID)
	}
	if v, _ := db.Vehicle(first.ID); v.FixedDriverID != nil {
		t.Errorf("first vehicle still bound to %d, want released", *v.FixedDriverID)
	}
	if v, _ := db.Vehicle(second.ID); v.FixedDriverID == nil || *v.FixedDriverID != d.ID {
		t.Errorf("second vehicle FixedDriverID = %v, want %d", v.FixedDriverID, d.ID)
	}
}

func TestDriverUpdate_TypeKeepsExistingBinding(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()
	v := mustVehicle(t, svc, "AAA1111")
	d := mustDriver(t, svc, "11144477735")

	_, err := svc.Drivers.Update(ctx, d.ID, Payload{"tipo": "terceirizado"})
	wantKind(t, err, apperr.KindValidation)

	if _, err := svc.Drivers.Update(ctx, d.ID, Payload{"veiculo_id": v.ID}); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Drivers.Update(ctx, d.ID, Payload{"tipo": "terceirizado"})
	if err != nil {
		t.Fatalf("Update() error = %v, want nil", err)
	}
	if got.Type != "terceirizado" {
		t.Errorf("Type = %q, want terceirizado", got.Type)
	}
}

func TestDriverCreate_NormalisesDocument(t *testing.T) {
	svc, _ := newServices(t)
	d := mustDriver(t, svc, "529.982.247-25")

	if d.Document != "52998224725" {
		t.Errorf("Document = %q, want digits only", d.Document)
	}
	if d.Name != "JOÃO DA SILVA" {
		t.Errorf("Name = %q, want JOÃO DA SILVA", d.Name)
	}
	if d.Code != "MOT-2026-001" {
		t.Errorf("Code = %q, want MOT-2026-001", d.Code)
	}

	_, err := svc.Drivers.Create(context.Background(), Payload{
		"nome": "Outro Nome", "documento": "52998224725", "tipo": "proprio",
	})
	wantKind(t, err, apperr.KindConflict)
}

func TestFreightCreate_DerivesRevenueAndResult(t *testing.T) {
	f := newFleet(t)
	fr := f.freight(t)

	if fr.Revenue != 1000 || fr.Costs != 0 || fr.Result != 1000 {
		t.Errorf("revenue/costs/result = %v/%v/%v, want 1000/0/1000", fr.Revenue, fr.Costs, fr.Result)
	}
	if fr.DriverName != "JOÃO DA SILVA" || fr.VehiclePlate != "ABC1D23" {
		t.Errorf("cached names = %q/%q", fr.DriverName, fr.VehiclePlate)
	}
	if fr.Date.String() != "2026-03-10" {
		t.Errorf("Date = %s, want 2026-03-10", fr.Date)
	}
}

func TestFreightCreate_ExplicitRevenueWins(t *testing.T) {
	f := newFleet(t)
	payload := freightPayload(f.driver.ID, f.vehicle.ID)
	payload["receita"] = 1500

	fr, err := f.svc.Freights.Create(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Revenue != 1500 || fr.Result != 1500 {
		t.Errorf("revenue/result = %v/%v, want 1500/1500", fr.Revenue, fr.Result)
	}
}

func TestFreightCreate_CodesIncrease(t *testing.T) {
	f := newFleet(t)
	for _, want := range []string{"FRT-2026-001", "FRT-2026-002", "FRT-2026-003"} {
		if got := f.freight(t).Code; got != want {
			t.Errorf("Code = %q, want %q", got, want)
		}
	}
}

func TestFreightCreate_RetriesOnCodeCollision(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()

	taken := &store.Freight{
		Code: "FRT-2026-001", Origin: "A", Destination: "B",
		DriverID: f.driver.ID, VehicleID: f.vehicle.ID, Date: store.DateOf(testNow),
	}
	if err := f.svc.Freights.store.Freights.Insert(ctx, taken); err != nil {
		t.Fatal(err)
	}

	fr := f.freight(t)
	if fr.Code != "FRT-2026-002" {
		t.Errorf("Code = %q, want FRT-2026-002", fr.Code)
	}
	if got := f.db.Counter("FRT-2026"); got != 2 {
		t.Errorf("counter = %d, want 2", got)
	}
}

func TestFreightCreate_FallbackCode(t *testing.T) {
	f := newFleet(t)
	f.db.SequenceErr = errors.New("sequence table locked")

	fr := f.freight(t)
	want := fmt.Sprintf("FRT-%d-", testNow.UnixMilli())
	if len(fr.Code) != len(want)+5 || !strings.HasPrefix(fr.Code, want) {
		t.Errorf("Code = %q, want fallback %sNNNNN", fr.Code, want)
	}
}

func TestReconcile_AfterFallbackKeepsNumbering(t *testing.T) {
	svc, db := newServices(t)
	ctx := context.Background()

	mustVehicle(t, svc, "AAA1A11")
	db.SequenceErr = errors.New("sequence table locked")
	fallback := mustVehicle(t, svc, "BBB2B22")
	db.SequenceErr = nil
	if strings.Count(fallback.Code, "-") != 2 {
		t.Fatalf("Code = %q, want a fallback code", fallback.Code)
	}

	if err := sequence.Reconcile(ctx, svc.Vehicles.store.Sequences, sequence.Targets, testNow, nil); err != nil {
		t.Fatalf("Reconcile() error = %v, want nil", err)
	}

	if got := mustVehicle(t, svc, "CCC3C33").Code; got != "FROTA-002" {
		t.Errorf("Code = %q, want FROTA-002", got)
	}
}

func TestFreightCreate_MissingReferences(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()

	_, err := f.svc.Freights.Create(ctx, freightPayload(99, f.vehicle.ID))
	wantKind(t, err, apperr.KindNotFound)

	_, err = f.svc.Freights.Create(ctx, freightPayload(f.driver.ID, 99))
	wantKind(t, err, apperr.KindNotFound)

	payload := freightPayload(f.driver.ID, f.vehicle.ID)
	payload["fazenda_id"] = 7
	_, err = f.svc.Freights.Create(ctx, payload)
	wantKind(t, err, apperr.KindNotFound)

	if freights, total, _ := f.svc.Freights.List(ctx, store.FreightFilter{}, store.Page{Limit: 50}); total != 0 {
		t.Errorf("stored %d freights (%v), want 0", total, freights)
	}
}

func TestFreightCreate_FarmRollup(t *testing.T) {
	f := newFleet(t)
	farm := mustFarm(t, f.svc)

	payload := freightPayload(f.driver.ID, f.vehicle.ID)
	payload["fazenda_id"] = farm.ID
	payload["toneladas"] = 12
	payload["receita"] = 1200

	fr, err := f.svc.Freights.Create(context.Background(), payload)
	if err != nil {
		t.Fatal(err)
	}
	if fr.FarmName == nil || *fr.FarmName != "BOA VISTA" {
		t.Errorf("FarmName = %v, want BOA VISTA", fr.FarmName)
	}

	got, _ := f.db.Farm(farm.ID)
	if got.SacksLoaded != 200 || got.TotalTons != 12 || got.TotalRevenue != 1200 {
		t.Errorf("farm totals = %d/%v/%v, want 200/12/1200", got.SacksLoaded, got.TotalTons, got.TotalRevenue)
	}
	if got.LastShipment == nil || got.LastShipment.String() != "2026-03-10" {
		t.Errorf("LastShipment = %v, want 2026-03-10", got.LastShipment)
	}
}

func TestFreightCreate_FarmRollupFailureRollsBack(t *testing.T) {
	f := newFleet(t)
	farm := mustFarm(t, f.svc)
	f.db.FailOn["Farms.AddVolume"] = errors.New("disk full")

	payload := freightPayload(f.driver.ID, f.vehicle.ID)
	payload["fazenda_id"] = farm.ID
	_, err := f.svc.Freights.Create(context.Background(), payload)
	wantKind(t, err, apperr.KindInternal)

	if _, total, _ := f.svc.Freights.List(context.Background(), store.FreightFilter{}, store.Page{}); total != 0 {
		t.Errorf("freights = %d, want 0 after rollback", total)
	}
}

func TestFreightUpdate_RederivesFromStoredValues(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	fr := f.freight(t)

	if _, err := f.svc.Costs.Create(ctx, costPayload(fr.ID, 100)); err != nil {
		t.Fatal(err)
	}

	got, err := f.svc.Freights.Update(ctx, fr.ID, Payload{"toneladas": 20})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Revenue != 2000 || got.Costs != 100 || got.Result != 1900 {
		t.Errorf("revenue/costs/result = %v/%v/%v, want 2000/100/1900", got.Revenue, got.Costs, got.Result)
	}
}

func TestFreightUpdate_IgnoresSettlementLatch(t *testing.T) {
	f := newFleet(t)
	fr := f.freight(t)

	_, err := f.svc.Freights.Update(context.Background(), fr.ID, Payload{"pagamento_id": 5})
	wantKind(t, err, apperr.KindValidation)

	got, _ := f.db.Freight(fr.ID)
	if got.PaymentID != nil {
		t.Errorf("PaymentID = %d, want nil", *got.PaymentID)
	}
}

func costPayload(freightID int64, amount float64) Payload {
	return Payload{
		"frete_id": freightID, "tipo": "pedagio", "descricao": "Pedágio BR-163",
		"valor": amount, "data": "2026-03-11",
	}
}

func TestCostRollup_OrderIndependent(t *testing.T) {
	for _, amounts := range [][]float64{{150.5, 49.5}, {49.5, 150.5}} {
		f := newFleet(t)
		fr := f.freight(t)

		for _, a := range amounts {
			if _, err := f.svc.Costs.Create(context.Background(), costPayload(fr.ID, a)); err != nil {
				t.Fatal(err)
			}
		}

		got, _ := f.db.Freight(fr.ID)
		if got.Costs != 200 || got.Result != 800 {
			t.Errorf("order %v: costs/result = %v/%v, want 200/800", amounts, got.Costs, got.Result)
		}
	}
}

func TestCostCreate_UnknownFreight(t *testing.T) {
	svc, _ := newServices(t)
	_, err := svc.Costs.Create(context.Background(), costPayload(404, 10))
	wantKind(t, err, apperr.KindNotFound)
}

func TestCostUpdateAndDelete_MoveRollup(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	a, b := f.freight(t), f.freight(t)

	c, err := f.svc.Costs.Create(ctx, costPayload(a.ID, 100))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Costs.Update(ctx, c.ID, Payload{"valor": 250, "frete_id": b.ID}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	gotA, _ := f.db.Freight(a.ID)
	gotB, _ := f.db.Freight(b.ID)
	if gotA.Costs != 0 || gotA.Result != 1000 {
		t.Errorf("freight A costs/result = %v/%v, want 0/1000", gotA.Costs, gotA.Result)
	}
	if gotB.Costs != 250 || gotB.Result != 750 {
		t.Errorf("freight B costs/result = %v/%v, want 250/750", gotB.Costs, gotB.Result)
	}

	if err := f.svc.Costs.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	gotB, _ = f.db.Freight(b.ID)
	if gotB.Costs != 0 || gotB.Result != 1000 {
		t.Errorf("after delete costs/result = %v/%v, want 0/1000", gotB.Costs, gotB.Result)
	}
}

func paymentPayload(driverID int64, freightIDs ...int64) Payload {
	return Payload{
		"motorista_id": driverID, "periodo_fretes": "março/2026", "fretes_incluidos": freightIDs,
		"total_toneladas": 20, "valor_por_tonelada": 100, "valor_total": 2000,
		"data_pagamento": "15/03/2026", "metodo_pagamento": "pix",
	}
}

func TestPaymentCreate_SettlesAllListedFreights(t *testing.T) {
	f := newFleet(t)
	a, c := f.freight(t), f.freight(t)

	p, err := f.svc.Payments.Create(context.Background(), paymentPayload(f.driver.ID, a.ID, c.ID, a.ID))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Code != "PAG-2026-001" {
		t.Errorf("Code = %q, want PAG-2026-001", p.Code)
	}
	if p.FreightCount != 2 || len(p.FreightIDs) != 2 {
		t.Errorf("FreightCount = %d, FreightIDs = %v, want 2 distinct", p.FreightCount, p.FreightIDs)
	}
	if p.Status != store.PaymentStatusPending || p.DriverName != "JOÃO DA SILVA" {
		t.Errorf("Status, DriverName = %q, %q", p.Status, p.DriverName)
	}

	for _, id := range []int64{a.ID, c.ID} {
		got, _ := f.db.Freight(id)
		if got.PaymentID == nil || *got.PaymentID != p.ID {
			t.Errorf("freight %d PaymentID = %v, want %d", id, got.PaymentID, p.ID)
		}
	}
}

func TestPaymentCreate_CommaSeparatedFreights(t *testing.T) {
	f := newFleet(t)
	a, c := f.freight(t), f.freight(t)

	payload := paymentPayload(f.driver.ID)
	payload["fretes_incluidos"] = fmt.Sprintf("%d, %d", a.ID, c.ID)
	p, err := f.svc.Payments.Create(context.Background(), payload)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.FreightCount != 2 {
		t.Errorf("FreightCount = %d, want 2", p.FreightCount)
	}
	for _, id := range []int64{a.ID, c.ID} {
		if got, _ := f.db.Freight(id); got.PaymentID == nil || *got.PaymentID != p.ID {
			t.Errorf("freight %d PaymentID = %v, want %d", id, got.PaymentID, p.ID)
		}
	}

	payload = paymentPayload(f.driver.ID)
	payload["fretes_incluidos"] = " , "
	_, err = f.svc.Payments.Create(context.Background(), payload)
	wantKind(t, err, apperr.KindValidation)
}

func TestPaymentCreate_SettledFreightAbortsAll(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	a, b := f.freight(t), f.freight(t)
	f.db.SetFreightPayment(b.ID, 77)

	_, err := f.svc.Payments.Create(ctx, paymentPayload(f.driver.ID, a.ID, b.ID))
	wantKind(t, err, apperr.KindBusinessRule)

	if got, _ := f.db.Freight(a.ID); got.PaymentID != nil {
		t.Errorf("freight A PaymentID = %d, want nil", *got.PaymentID)
	}
	if got, _ := f.db.Freight(b.ID); got.PaymentID == nil || *got.PaymentID != 77 {
		t.Errorf("freight B PaymentID = %v, want 77", got.PaymentID)
	}
	if _, total, _ := f.svc.Payments.List(ctx, store.Page{}); total != 0 {
		t.Errorf("payments = %d, want 0", total)
	}
}

func TestPaymentCreate_MissingFreight(t *testing.T) {
	f := newFleet(t)
	a := f.freight(t)

	_, err := f.svc.Payments.Create(context.Background(), paymentPayload(f.driver.ID, a.ID, 999))
	wantKind(t, err, apperr.KindBusinessRule)
	if got, _ := f.db.Freight(a.ID); got.PaymentID != nil {
		t.Errorf("freight PaymentID = %d, want nil", *got.PaymentID)
	}
}

func TestPaymentCreate_SettleFailureRollsBack(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	a := f.freight(t)
	f.db.FailOn["Freights.Settle"] = errors.New("connection reset")

	_, err := f.svc.Payments.Create(ctx, paymentPayload(f.driver.ID, a.ID))
	wantKind(t, err, apperr.KindInternal)

	if _, total, _ := f.svc.Payments.List(ctx, store.Page{}); total != 0 {
		t.Errorf("payments = %d, want 0 after rollback", total)
	}
}

func TestPaymentDelete_UnsettlesFreights(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	a := f.freight(t)

	p, err := f.svc.Payments.Create(ctx, paymentPayload(f.driver.ID, a.ID))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Payments.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if got, _ := f.db.Freight(a.ID); got.PaymentID != nil {
		t.Errorf("PaymentID = %d, want nil after payment delete", *got.PaymentID)
	}
	pending, err := f.svc.Freights.Pending(ctx, &f.driver.ID)
	if err != nil || len(pending) != 1 {
		t.Errorf("Pending() = %d freights, %v, want 1", len(pending), err)
	}
}

func TestFarmIncrementVolume(t *testing.T) {
	svc, _ := newServices(t)
	farm := mustFarm(t, svc)

	got, err := svc.Farms.IncrementVolume(context.Background(), farm.ID, Payload{
		"toneladas": 30, "quantidadeSacas": 500, "faturamentoTotal": 3000,
	})
	if err != nil {
		t.Fatalf("IncrementVolume() error = %v", err)
	}
	if got.SacksLoaded != 500 || got.TotalTons != 30 || got.TotalRevenue != 3000 {
		t.Errorf("totals = %d/%v/%v, want 500/30/3000", got.SacksLoaded, got.TotalTons, got.TotalRevenue)
	}
	if got.LastShipment == nil || got.LastShipment.String() != "2026-03-10" {
		t.Errorf("LastShipment = %v, want today", got.LastShipment)
	}
	if farm.Code != "FAZ-000001" || farm.AvgSackWeight != 25 {
		t.Errorf("Code, AvgSackWeight = %q, %v", farm.Code, farm.AvgSackWeight)
	}
}

func TestDashboard_KPIsAndCache(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	fr := f.freight(t)
	if _, err := f.svc.Costs.Create(ctx, costPayload(fr.ID, 250)); err != nil {
		t.Fatal(err)
	}

	k, hit, err := f.svc.Dashboard.KPIs(ctx)
	if err != nil || hit {
		t.Fatalf("KPIs() = hit %v, err %v, want computed", hit, err)
	}
	if k.Revenue != 1000 || k.Costs != 250 || k.Profit != 750 || k.ProfitMargin != 75 {
		t.Errorf("KPIs = %+v", k)
	}
	if k.FreightCount != 1 || k.ActiveDrivers != 1 || k.AvailableVehicles != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", k.FreightCount, k.ActiveDrivers, k.AvailableVehicles)
	}

	cached, hit, err := f.svc.Dashboard.KPIs(ctx)
	if err != nil || !hit || cached.FreightCount != 1 {
		t.Errorf("second KPIs() = %+v, hit %v, err %v, want cached copy", cached, hit, err)
	}

	f.freight(t)
	fresh, hit, err := f.svc.Dashboard.KPIs(ctx)
	if err != nil || hit || fresh.FreightCount != 2 {
		t.Errorf("KPIs() after a freight = %+v, hit %v, err %v, want recomputed", fresh, hit, err)
	}

	if err := f.svc.Dashboard.Warm(ctx); err != nil {
		t.Fatal(err)
	}
	warm, hit, _ := f.svc.Dashboard.KPIs(ctx)
	if !hit || warm.FreightCount != 2 {
		t.Errorf("KPIs() after Warm = %+v, hit %v, want cached FreightCount 2", warm, hit)
	}
}

func TestDashboard_WritesEvictCache(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	fr := f.freight(t)

	prime := func() {
		t.Helper()
		if _, _, err := f.svc.Dashboard.KPIs(ctx); err != nil {
			t.Fatal(err)
		}
		if _, _, err := f.svc.Dashboard.RouteStats(ctx); err != nil {
			t.Fatal(err)
		}
	}
	writes := []struct {
		name  string
		write func() error
	}{
		{"cost", func() error { _, err := f.svc.Costs.Create(ctx, costPayload(fr.ID, 100)); return err }},
		{"freight update", func() error {
			_, err := f.svc.Freights.Update(ctx, fr.ID, Payload{"destino": "Paranaguá"})
			return err
		}},
		{"driver", func() error { mustDriver(t, f.svc, "111.444.777-35"); return nil }},
		{"vehicle", func() error { mustVehicle(t, f.svc, "QWE4R56"); return nil }},
	}

	for _, w := range writes {
		prime()
		if err := w.write(); err != nil {
			t.Fatalf("%s: %v", w.name, err)
		}
		if _, hit, _ := f.svc.Dashboard.KPIs(ctx); hit {
			t.Errorf("%s: KPIs served from cache after the write", w.name)
		}
		if _, hit, _ := f.svc.Dashboard.RouteStats(ctx); hit {
			t.Errorf("%s: route stats served from cache after the write", w.name)
		}
	}
}

func TestDashboard_RouteStatsOrderedByProfit(t *testing.T) {
	f := newFleet(t)
	ctx := context.Background()
	f.freight(t)

	payload := freightPayload(f.driver.ID, f.vehicle.ID)
	payload["destino"] = "Paranaguá"
	payload["toneladas"] = 30
	if _, err := f.svc.Freights.Create(ctx, payload); err != nil {
		t.Fatal(err)
	}

	stats, _, err := f.svc.Dashboard.RouteStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 || stats[0].Destination != "PARANAGUÁ" || stats[0].Profit != 3000 {
		t.Errorf("RouteStats() = %+v, want PARANAGUÁ first with 3000", stats)
	}
}

func TestDashboard_WithoutCache(t *testing.T) {
	st, _ := memstore.New()
	svc := New(Deps{Store: st})

	k, hit, err := svc.Dashboard.KPIs(context.Background())
	if err != nil || hit || k.ProfitMargin != 0 {
		t.Errorf("KPIs() = %+v, %v, %v, want zero totals", k, hit, err)
	}
}

func TestTranslate_PostgresCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *pq.Error
		wantKind apperr.Kind
		wantCode string
		wantFld  string
	}{
		{"undefined column", &pq.Error{Code: "42703"}, apperr.KindSchemaDrift, apperr.CodeSchemaOutdated, ""},
		{"undefined table", &pq.Error{Code: "42P01"}, apperr.KindSchemaDrift, apperr.CodeSchemaError, ""},
		{"foreign key", &pq.Error{Code: "23503"}, apperr.KindConflict, apperr.CodeConflict, ""},
		{"not null", &pq.Error{Code: "23502", Column: "placa"}, apperr.KindValidation, apperr.CodeValidation, "placa"},
		{"unique", &pq.Error{Code: "23505", Constraint: "frota_placa_key"}, apperr.KindConflict, apperr.CodeConflict, ""},
		{"check", &pq.Error{Code: "23514"}, apperr.KindValidation, apperr.CodeValidation, ""},
		{"other", &pq.Error{Code: "53300"}, apperr.KindInternal, apperr.CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := apperr.As(translate(fmt.Errorf("failed to update vehicle: %w", tt.err), "vehicle"))
			if !ok {
				t.Fatalf("translate() did not return an *apperr.Error")
			}
			if got.Kind != tt.wantKind || got.Code != tt.wantCode {
				t.Errorf("kind, code = %d, %q, want %d, %q", got.Kind, got.Code, tt.wantKind, tt.wantCode)
			}
			if tt.wantFld != "" && (len(got.Fields) != 1 || got.Fields[0].Field != tt.wantFld) {
				t.Errorf("fields = %+v, want one on %s", got.Fields, tt.wantFld)
			}
		})
	}
}
