package main

import (
	"net/http"

	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
)

type FreightResponse = response.APIResponse[*store.Freight]
type FreightListResponse = response.APIResponse[[]store.Freight]

func parseFreightFilter(r *http.Request) (store.FreightFilter, error) {
	var (
		filter store.FreightFilter
		err    error
	)
	if filter.From, err = queryDate(r, "data_inicio"); err != nil {
		return filter, err
	}
	if filter.To, err = queryDate(r, "data_fim"); err != nil {
		return filter, err
	}
	if filter.DriverID, err = queryID(r, "motorista_id"); err != nil {
		return filter, err
	}
	if filter.FarmID, err = queryID(r, "fazenda_id"); err != nil {
		return filter, err
	}
	return filter, nil
}

// @Summary		List freights
// @Description	Lists freights, newest first, by applying optional filters.
// @Tags			Fretes
// @Produce		json
// @Param			data_inicio		query		string					false	"Start date (YYYY-MM-DD)"
// @Param			data_fim		query		string					false	"End date (YYYY-MM-DD)"
// @Param			motorista_id	query		int						false	"Driver ID"
// @Param			fazenda_id		query		int						false	"Farm ID"
// @Param			page			query		int						false	"Page number"	default(1)
// @Param			limit			query		int						false	"Page size"		default(50)
// @Success		200				{object}	FreightListResponse
// @Failure		400				{object}	response.ErrorResponse	"Invalid filter"
// @Router			/fretes [get]
func (app *application) handleListFreights(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFreightFilter(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	p := parsePage(r)

	freights, total, err := app.services.Freights.List(r.Context(), filter, p.store())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved freights", freights, p.meta(total))
}

// @Summary		List pending freights
// @Description	Lists freights not yet covered by a payment.
// @Tags			Fretes
// @Produce		json
// @Param			motorista_id	query		int	false	"Driver ID"
// @Success		200				{object}	FreightListResponse
// @Router			/fretes/pendentes [get]
func (app *application) handleListPendingFreights(w http.ResponseWriter, r *http.Request) {
	driverID, err := queryID(r, "motorista_id")
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	freights, err := app.services.Freights.Pending(r.Context(), driverID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved pending freights", freights, nil)
}

func (app *application) handleGetFreight(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	f, err := app.services.Freights.Get(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Successfully retrieved freight", f)
}

// @Summary		List freight costs
// @Tags			Fretes
// @Produce		json
// @Param			id	path		int	true	"Freight ID"
// @Success		200	{object}	CostListResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/fretes/{id}/custos [get]
func (app *application) handleListFreightCosts(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	costs, err := app.services.Freights.Costs(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved freight costs", costs, nil)
}

// @Summary		Create freight
// @Description	Registers a freight, derives its revenue and result and adds its volume to the farm.
// @Tags			Fretes
// @Accept			json
// @Produce		json
// @Success		201	{object}	FreightResponse
// @Failure		400	{object}	response.ErrorResponse
// @Failure		404	{object}	response.ErrorResponse	"Driver, vehicle or farm not found"
// @Router			/fretes [post]
func (app *application) handleCreateFreight(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	f, err := app.services.Freights.Create(r.Context(), payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Freight created", f)
}

func (app *application) handleUpdateFreight(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	f, err := app.services.Freights.Update(r.Context(), id, payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Freight updated", f)
}

func (app *application) handleDeleteFreight(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.services.Freights.Delete(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData[any](w, http.StatusOK, "Freight deleted", nil)
}
