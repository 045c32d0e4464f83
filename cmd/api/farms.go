package main

import (
	"net/http"

	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
)

type FarmResponse = response.APIResponse[*store.Farm]
type FarmListResponse = response.APIResponse[[]store.Farm]

func (app *application) handleListFarms(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)

	farms, total, err := app.services.Farms.List(r.Context(), p.store())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved farms", farms, p.meta(total))
}

func (app *application) handleGetFarm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	f, err := app.services.Farms.Get(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Successfully retrieved farm", f)
}

func (app *application) handleCreateFarm(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	f, err := app.services.Farms.Create(r.Context(), payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Farm created", f)
}

func (app *application) handleUpdateFarm(w http.ResponseWriter, r *http.Request) {
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

	f, err := app.services.Farms.Update(r.Context(), id, payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Farm updated", f)
}

func (app *application) handleDeleteFarm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.services.Farms.Delete(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData[any](w, http.StatusOK, "Farm deleted", nil)
}

// @Summary		Increment farm volume
// @Description	Adds one shipment's sacks, tonnage and revenue to the farm totals.
// @Tags			Fazendas
// @Accept			json
// @Produce		json
// @Param			id		path		int																		true	"Farm ID"
// @Param			volume	body		object{sacas:int,toneladas:number,faturamento:number,data_frete:string}	true	"Shipment"
// @Success		200		{object}	FarmResponse
// @Failure		400		{object}	response.ErrorResponse
// @Failure		404		{object}	response.ErrorResponse
// @Router			/fazendas/{id}/incrementar-volume [post]
func (app *application) handleIncrementFarmVolume(w http.ResponseWriter, r *http.Request) {
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

	f, err := app.services.Farms.IncrementVolume(r.Context(), id, payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Farm volume updated", f)
}
