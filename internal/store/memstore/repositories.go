package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/farxc/gestao-fretes/internal/rules"
	"github.com/farxc/gestao-fretes/internal/store"
)

func sortedValues[T any](m map[int64]T, cmpFn func(a, b T) int) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, cmpFn)
	return out
}

type vehicles struct{ db *DB }

func (r *vehicles) List(_ context.Context, filter store.VehicleFilter, page store.Page) ([]store.Vehicle, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	all := sortedValues(r.db.t.vehicles, func(a, b store.Vehicle) int { return cmp.Compare(a.Plate, b.Plate) })
	if filter.OnlyUnbound {
		all = slices.DeleteFunc(all, func(v store.Vehicle) bool { return v.FixedDriverID != nil })
	}
	return pageOf(all, page), len(all), nil
}

func (r *vehicles) GetByID(_ context.Context, id int64) (*store.Vehicle, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.t.vehicles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func (r *vehicles) GetByDriver(_ context.Context, driverID int64) (*store.Vehicle, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.vehicles, func(a, b store.Vehicle) int { return cmp.Compare(a.ID, b.ID) })
	for _, v := range all {
		if v.FixedDriverID != nil && *v.FixedDriverID == driverID {
			return &v, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *vehicles) checkUnique(v store.Vehicle) error {
	for _, other := range r.db.t.vehicles {
		if other.ID == v.ID {
			continue
		}
		if other.Code == v.Code {
			return store.UniqueViolation(store.ConstraintVehicleCode)
		}
		if other.Plate == v.Plate {
			return store.UniqueViolation("frota_placa_key")
		}
	}
	return nil
}

func (r *vehicles) Insert(_ context.Context, v *store.Vehicle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("Vehicles.Insert"); err != nil {
		return err
	}
	if err := r.checkUnique(*v); err != nil {
		return err
	}
	v.ID = r.db.id("frota")
	v.CreatedAt, v.UpdatedAt = r.db.now(), r.db.now()
	r.db.t.vehicles[v.ID] = *v
	return nil
}

func (r *vehicles) Update(_ context.Context, id int64, changes store.Changes) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.t.vehicles[id]
	if err := apply(&v, changes, store.VehicleFields); err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	if err := r.checkUnique(v); err != nil {
		return err
	}
	v.UpdatedAt = r.db.now()
	r.db.t.vehicles[id] = v
	return nil
}

func (r *vehicles) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.vehicles[id]; !ok {
		return store.ErrNotFound
	}
	for _, f := range r.db.t.freights {
		if f.VehicleID == id {
			return store.ForeignKeyViolation("fretes_caminhao_id_fkey")
		}
	}
	delete(r.db.t.vehicles, id)
	return nil
}

func (r *vehicles) BindDriver(_ context.Context, vehicleID, driverID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	v, ok := r.db.t.vehicles[vehicleID]
	if !ok {
		return store.ErrNotFound
	}
	v.FixedDriverID = &driverID
	v.UpdatedAt = r.db.now()
	r.db.t.vehicles[vehicleID] = v
	return nil
}

func (r *vehicles) ReleaseDriver(_ context.Context, driverID, exceptVehicleID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, v := range r.db.t.vehicles {
		if id != exceptVehicleID && v.FixedDriverID != nil && *v.FixedDriverID == driverID {
			v.FixedDriverID = nil
			v.UpdatedAt = r.db.now()
			r.db.t.vehicles[id] = v
		}
	}
	return nil
}

type drivers struct{ db *DB }

func (r *drivers) List(_ context.Context, page store.Page) ([]store.Driver, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.drivers, func(a, b store.Driver) int { return cmp.Compare(a.Name, b.Name) })
	return pageOf(all, page), len(all), nil
}

func (r *drivers) GetByID(_ context.Context, id int64) (*store.Driver, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.t.drivers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (r *drivers) checkUnique(d store.Driver) error {
	for _, other := range r.db.t.drivers {
		if other.ID == d.ID {
			continue
		}
		if other.Code == d.Code {
			return store.UniqueViolation(store.ConstraintDriverCode)
		}
		if other.Document == d.Document {
			return store.UniqueViolation("motoristas_documento_key")
		}
	}
	return nil
}

func (r *drivers) Insert(_ context.Context, d *store.Driver) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.checkUnique(*d); err != nil {
		return err
	}
	d.ID = r.db.id("motoristas")
	d.CreatedAt, d.UpdatedAt = r.db.now(), r.db.now()
	stored := *d
	stored.BoundVehicle = nil
	r.db.t.drivers[d.ID] = stored
	return nil
}

func (r *drivers) Update(_ context.Context, id int64, changes store.Changes) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.t.drivers[id]
	if err := apply(&d, changes, store.DriverFields); err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	if err := r.checkUnique(d); err != nil {
		return err
	}
	d.UpdatedAt = r.db.now()
	r.db.t.drivers[id] = d
	return nil
}

func (r *drivers) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.drivers[id]; !ok {
		return store.ErrNotFound
	}
	for _, f := range r.db.t.freights {
		if f.DriverID == id {
			return store.ForeignKeyViolation("fretes_motorista_id_fkey")
		}
	}
	for _, p := range r.db.t.payments {
		if p.DriverID == id {
			return store.ForeignKeyViolation("pagamentos_motorista_id_fkey")
		}
	}
	for vid, v := range r.db.t.vehicles {
		if v.FixedDriverID != nil && *v.FixedDriverID == id {
			v.FixedDriverID = nil
			r.db.t.vehicles[vid] = v
		}
	}
	delete(r.db.t.drivers, id)
	return nil
}

type freights struct{ db *DB }

func byFreightDateDesc(a, b store.Freight) int {
	if c := b.Date.Compare(a.Date.Time); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (r *freights) List(_ context.Context, filter store.FreightFilter, page store.Page) ([]store.Freight, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	all := sortedValues(r.db.t.freights, byFreightDateDesc)
	all = slices.DeleteFunc(all, func(f store.Freight) bool {
		switch {
		case filter.From != nil && f.Date.Before(filter.From.Time):
			return true
		case filter.To != nil && f.Date.After(filter.To.Time):
			return true
		case filter.DriverID != nil && f.DriverID != *filter.DriverID:
			return true
		case filter.FarmID != nil && (f.FarmID == nil || *f.FarmID != *filter.FarmID):
			return true
		}
		return false
	})
	return pageOf(all, page), len(all), nil
}

func (r *freights) ListPending(_ context.Context, driverID *int64) ([]store.Freight, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.freights, byFreightDateDesc)
	return slices.DeleteFunc(all, func(f store.Freight) bool {
		return f.PaymentID != nil || (driverID != nil && f.DriverID != *driverID)
	}), nil
}

func (r *freights) GetByID(_ context.Context, id int64) (*store.Freight, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.t.freights[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

func (r *freights) checkRefs(f store.Freight) error {
	if _, ok := r.db.t.drivers[f.DriverID]; !ok {
		return store.ForeignKeyViolation("fretes_motorista_id_fkey")
	}
	if _, ok := r.db.t.vehicles[f.VehicleID]; !ok {
		return store.ForeignKeyViolation("fretes_caminhao_id_fkey")
	}
	if f.FarmID != nil {
		if _, ok := r.db.t.farms[*f.FarmID]; !ok {
			return store.ForeignKeyViolation("fretes_fazenda_id_fkey")
		}
	}
	return nil
}

func (r *freights) Insert(_ context.Context, f *store.Freight) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("Freights.Insert"); err != nil {
		return err
	}
	for _, other := range r.db.t.freights {
		if other.Code == f.Code {
			return store.UniqueViolation(store.ConstraintFreightCode)
		}
	}
	if err := r.checkRefs(*f); err != nil {
		return err
	}
	f.ID = r.db.id("fretes")
	f.CreatedAt, f.UpdatedAt = r.db.now(), r.db.now()
	r.db.t.freights[f.ID] = *f
	return nil
}

func (r *freights) Update(_ context.Context, id int64, changes store.Changes) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.t.freights[id]
	if err := apply(&f, changes, store.FreightFields); err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	if err := r.checkRefs(f); err != nil {
		return err
	}
	f.UpdatedAt = r.db.now()
	r.db.t.freights[id] = f
	return nil
}

func (r *freights) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.freights[id]; !ok {
		return store.ErrNotFound
	}
	for cid, c := range r.db.t.costs {
		if c.FreightID == id {
			delete(r.db.t.costs, cid)
		}
	}
	delete(r.db.t.freights, id)
	return nil
}

func (r *freights) AddCost(_ context.Context, id int64, amount float64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.t.freights[id]
	if !ok {
		return store.ErrNotFound
	}
	f.Costs = rules.DeriveResult(f.Costs, -amount)
	f.Result = rules.DeriveResult(f.Revenue, f.Costs)
	f.UpdatedAt = r.db.now()
	r.db.t.freights[id] = f
	return nil
}

func (r *freights) LockForSettlement(_ context.Context, ids []int64) ([]store.SettlementState, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var states []store.SettlementState
	for _, id := range ids {
		if f, ok := r.db.t.freights[id]; ok {
			states = append(states, store.SettlementState{ID: id, PaymentID: f.PaymentID})
		}
	}
	slices.SortFunc(states, func(a, b store.SettlementState) int { return cmp.Compare(a.ID, b.ID) })
	return states, nil
}

func (r *freights) Settle(_ context.Context, paymentID int64, ids []int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("Freights.Settle"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		f, ok := r.db.t.freights[id]
		if !ok || f.PaymentID != nil {
			continue
		}
		pid := paymentID
		f.PaymentID = &pid
		f.UpdatedAt = r.db.now()
		r.db.t.freights[id] = f
		n++
	}
	return n, nil
}

func (r *freights) Unsettle(_ context.Context, paymentID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, f := range r.db.t.freights {
		if f.PaymentID != nil && *f.PaymentID == paymentID {
			f.PaymentID = nil
			f.UpdatedAt = r.db.now()
			r.db.t.freights[id] = f
			n++
		}
	}
	return n, nil
}

type costs struct{ db *DB }

func byCostDateDesc(a, b store.Cost) int {
	if c := b.Date.Compare(a.Date.Time); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func (r *costs) List(_ context.Context, page store.Page) ([]store.Cost, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.costs, byCostDateDesc)
	return pageOf(all, page), len(all), nil
}

func (r *costs) ListByFreight(_ context.Context, freightID int64) ([]store.Cost, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.costs, byCostDateDesc)
	return slices.DeleteFunc(all, func(c store.Cost) bool { return c.FreightID != freightID }), nil
}

func (r *costs) GetByID(_ context.Context, id int64) (*store.Cost, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.t.costs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (r *costs) Insert(_ context.Context, c *store.Cost) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("Costs.Insert"); err != nil {
		return err
	}
	if _, ok := r.db.t.freights[c.FreightID]; !ok {
		return store.ForeignKeyViolation("custos_frete_id_fkey")
	}
	c.ID = r.db.id("custos")
	c.CreatedAt, c.UpdatedAt = r.db.now(), r.db.now()
	r.db.t.costs[c.ID] = *c
	return nil
}

func (r *costs) Update(_ context.Context, id int64, changes store.Changes) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.t.costs[id]
	if err := apply(&c, changes, store.CostFields); err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := r.db.t.freights[c.FreightID]; !ok {
		return store.ForeignKeyViolation("custos_frete_id_fkey")
	}
	c.UpdatedAt = r.db.now()
	r.db.t.costs[id] = c
	return nil
}

func (r *costs) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.costs[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.t.costs, id)
	return nil
}

type payments struct{ db *DB }

func (r *payments) List(_ context.Context, page store.Page) ([]store.Payment, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.payments, func(a, b store.Payment) int {
		if c := b.PaymentDate.Compare(a.PaymentDate.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return pageOf(all, page), len(all), nil
}

func (r *payments) GetByID(_ context.Context, id int64) (*store.Payment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.t.payments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (r *payments) Insert(_ context.Context, p *store.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("Payments.Insert"); err != nil {
		return err
	}
	for _, other := range r.db.t.payments {
		if other.Code == p.Code {
			return store.UniqueViolation(store.ConstraintPaymentCode)
		}
	}
	if _, ok := r.db.t.drivers[p.DriverID]; !ok {
		return store.ForeignKeyViolation("pagamentos_motorista_id_fkey")
	}
	p.ID = r.db.id("pagamentos")
	p.CreatedAt, p.UpdatedAt = r.db.now(), r.db.now()
	stored := *p
	stored.FreightIDs = slices.Clone(p.FreightIDs)
	r.db.t.payments[p.ID] = stored
	return nil
}

func (r *payments) Update(_ context.Context, id int64, changes store.Changes) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.t.payments[id]
	if err := apply(&p, changes, store.PaymentFields); err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = r.db.now()
	r.db.t.payments[id] = p
	return nil
}

func (r *payments) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.payments[id]; !ok {
		return store.ErrNotFound
	}
	// fretes.pagamento_id is ON DELETE SET NULL.
	for fid, f := range r.db.t.freights {
		if f.PaymentID != nil && *f.PaymentID == id {
			f.PaymentID = nil
			r.db.t.freights[fid] = f
		}
	}
	delete(r.db.t.payments, id)
	return nil
}

func (r *payments) SetReceipt(_ context.Context, id int64, name, url string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("Payments.SetReceipt"); err != nil {
		return err
	}
	p, ok := r.db.t.payments[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ReceiptName, p.ReceiptURL, p.ReceiptUploadedAt = &name, &url, &at
	p.UpdatedAt = r.db.now()
	r.db.t.payments[id] = p
	return nil
}

type farms struct{ db *DB }

func (r *farms) List(_ context.Context, page store.Page) ([]store.Farm, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.farms, func(a, b store.Farm) int { return cmp.Compare(a.Name, b.Name) })
	return pageOf(all, page), len(all), nil
}

func (r *farms) GetByID(_ context.Context, id int64) (*store.Farm, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.t.farms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

func (r *farms) Insert(_ context.Context, f *store.Farm) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.t.farms {
		if other.Code == f.Code {
			return store.UniqueViolation(store.ConstraintFarmCode)
		}
	}
	f.ID = r.db.id("fazendas")
	f.CreatedAt, f.UpdatedAt = r.db.now(), r.db.now()
	r.db.t.farms[f.ID] = *f
	return nil
}

func (r *farms) Update(_ context.Context, id int64, changes store.Changes) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f, ok := r.db.t.farms[id]
	if err := apply(&f, changes, store.FarmFields); err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	f.UpdatedAt = r.db.now()
	r.db.t.farms[id] = f
	return nil
}

func (r *farms) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.t.farms[id]; !ok {
		return store.ErrNotFound
	}
	// fretes.fazenda_id is ON DELETE SET NULL.
	for fid, f := range r.db.t.freights {
		if f.FarmID != nil && *f.FarmID == id {
			f.FarmID = nil
			r.db.t.freights[fid] = f
		}
	}
	delete(r.db.t.farms, id)
	return nil
}

func (r *farms) AddVolume(_ context.Context, id int64, v store.FarmVolume) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fail("Farms.AddVolume"); err != nil {
		return err
	}
	f, ok := r.db.t.farms[id]
	if !ok {
		return store.ErrNotFound
	}
	f.SacksLoaded += v.Sacks
	f.TotalTons = rules.DeriveResult(f.TotalTons, -v.Tons)
	f.TotalRevenue = rules.DeriveResult(f.TotalRevenue, -v.Revenue)
	last := v.Date
	f.LastShipment = &last
	f.UpdatedAt = r.db.now()
	r.db.t.farms[id] = f
	return nil
}

type attachments struct{ db *DB }

func (r *attachments) Insert(_ context.Context, a *store.Attachment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.t.attachments {
		if other.Code == a.Code {
			return store.UniqueViolation(store.ConstraintAttachmentCode)
		}
	}
	a.ID = r.db.id("anexos")
	a.CreatedAt = r.db.now()
	r.db.t.attachments[a.ID] = *a
	return nil
}

func (r *attachments) ListByEntity(_ context.Context, entityType string, entityID int64) ([]store.Attachment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := sortedValues(r.db.t.attachments, func(a, b store.Attachment) int { return cmp.Compare(b.ID, a.ID) })
	return slices.DeleteFunc(all, func(a store.Attachment) bool {
		return a.EntityType != entityType || a.EntityID != entityID
	}), nil
}

type sequences struct{ db *DB }

func (r *sequences) Allocate(_ context.Context, scope string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.SequenceErr != nil {
		return 0, r.db.SequenceErr
	}
	r.db.sequences[scope]++
	return r.db.sequences[scope], nil
}

func (r *sequences) Raise(_ context.Context, scope string, atLeast int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sequences[scope] = max(r.db.sequences[scope], atLeast)
	return nil
}

func (r *sequences) MaxCode(_ context.Context, table, column, prefix string) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var codes []string
	switch table {
	case "frota":
		for _, v := range r.db.t.vehicles {
			codes = append(codes, v.Code)
		}
	case "motoristas":
		for _, d := range r.db.t.drivers {
			codes = append(codes, d.Code)
		}
	case "fretes":
		for _, f := range r.db.t.freights {
			codes = append(codes, f.Code)
		}
	case "pagamentos":
		for _, p := range r.db.t.payments {
			codes = append(codes, p.Code)
		}
	case "fazendas":
		for _, f := range r.db.t.farms {
			codes = append(codes, f.Code)
		}
	case "anexos":
		for _, a := range r.db.t.attachments {
			codes = append(codes, a.Code)
		}
	}

	best := ""
	for _, c := range codes {
		if !store.SequentialCode(c, prefix) {
			continue
		}
		if len(c) > len(best) || (len(c) == len(best) && c > best) {
			best = c
		}
	}
	return best, nil
}

type dashboard struct{ db *DB }

func (r *dashboard) KPIs(_ context.Context) (store.KPIs, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var k store.KPIs
	for _, f := range r.db.t.freights {
		k.Revenue += f.Revenue
		k.Costs += f.Costs
		k.Profit += f.Result
		k.FreightCount++
	}
	for _, d := range r.db.t.drivers {
		if d.Status == store.DriverStatusActive {
			k.ActiveDrivers++
		}
	}
	for _, v := range r.db.t.vehicles {
		if v.Status == store.VehicleStatusAvailable {
			k.AvailableVehicles++
		}
	}
	return k, nil
}

func (r *dashboard) RouteStats(_ context.Context) ([]store.RouteStat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	type route struct{ origin, destination string }
	byRoute := map[route]*store.RouteStat{}
	for _, f := range r.db.t.freights {
		key := route{f.Origin, f.Destination}
		s, ok := byRoute[key]
		if !ok {
			s = &store.RouteStat{Origin: f.Origin, Destination: f.Destination}
			byRoute[key] = s
		}
		s.FreightCount++
		s.Revenue += f.Revenue
		s.Costs += f.Costs
		s.Profit += f.Result
	}

	stats := make([]store.RouteStat, 0, len(byRoute))
	for _, s := range byRoute {
		stats = append(stats, *s)
	}
	slices.SortFunc(stats, func(a, b store.RouteStat) int {
		if c := cmp.Compare(b.Profit, a.Profit); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Origin, b.Origin); c != 0 {
			return c
		}
		return cmp.Compare(a.Destination, b.Destination)
	})
	return stats, nil
}
