package main

import (
	"net/http"

	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
)

type DriverResponse = response.APIResponse[*store.Driver]
type DriverListResponse = response.APIResponse[[]store.Driver]

// @Summary		List drivers
// @Tags			Motoristas
// @Produce		json
// @Param			page	query		int	false	"Page number"	default(1)
// @Param			limit	query		int	false	"Page size"		default(50)
// @Success		200		{object}	DriverListResponse
// @Router			/motoristas [get]
func (app *application) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)

	drivers, total, err := app.services.Drivers.List(r.Context(), p.store())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved drivers", drivers, p.meta(total))
}

// @Summary		Get driver
// @Description	Returns the driver with the vehicle bound to them, if any.
// @Tags			Motoristas
// @Produce		json
// @Param			id	path		int	true	"Driver ID"
// @Success		200	{object}	DriverResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/motoristas/{id} [get]
func (app *application) handleGetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	d, err := app.services.Drivers.Get(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Successfully retrieved driver", d)
}

// @Summary		Create driver
// @Description	Registers a driver. Own and aggregated drivers must be bound to a vehicle through veiculo_id.
// @Tags			Motoristas
// @Accept			json
// @Produce		json
// @Success		201	{object}	DriverResponse
// @Failure		400	{object}	response.ErrorResponse
// @Failure		404	{object}	response.ErrorResponse	"Vehicle not found"
// @Failure		409	{object}	response.ErrorResponse	"Document already registered"
// @Router			/motoristas [post]
func (app *application) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	d, err := app.services.Drivers.Create(r.Context(), payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Driver created", d)
}

func (app *application) handleUpdateDriver(w http.ResponseWriter, r *http.Request) {
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

	d, err := app.services.Drivers.Update(r.Context(), id, payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Driver updated", d)
}

func (app *application) handleDeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.services.Drivers.Delete(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData[any](w, http.StatusOK, "Driver deleted", nil)
}
