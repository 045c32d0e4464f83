package main

import (
	"net/http"

	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
)

type CostResponse = response.APIResponse[*store.Cost]
type CostListResponse = response.APIResponse[[]store.Cost]

func (app *application) handleListCosts(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)

	costs, total, err := app.services.Costs.List(r.Context(), p.store())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved costs", costs, p.meta(total))
}

func (app *application) handleGetCost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	c, err := app.services.Costs.Get(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Successfully retrieved cost", c)
}

// @Summary		Create cost
// @Description	Records a cost against a freight and lowers the freight's result by its amount.
// @Tags			Custos
// @Accept			json
// @Produce		json
// @Success		201	{object}	CostResponse
// @Failure		400	{object}	response.ErrorResponse
// @Failure		404	{object}	response.ErrorResponse	"Freight not found"
// @Router			/custos [post]
func (app *application) handleCreateCost(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	c, err := app.services.Costs.Create(r.Context(), payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Cost created", c)
}

func (app *application) handleUpdateCost(w http.ResponseWriter, r *http.Request) {
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

	c, err := app.services.Costs.Update(r.Context(), id, payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Cost updated", c)
}

func (app *application) handleDeleteCost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.services.Costs.Delete(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData[any](w, http.StatusOK, "Cost deleted", nil)
}
