package main

import (
	"net/http"

	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
)

type VehicleResponse = response.APIResponse[*store.Vehicle]
type VehicleListResponse = response.APIResponse[[]store.Vehicle]

// @Summary		List vehicles
// @Description	Lists the fleet, newest first.
// @Tags			Frota
// @Produce		json
// @Param			vagos	query		int					false	"1 to list only vehicles without a fixed driver"
// @Param			page	query		int					false	"Page number"	default(1)
// @Param			limit	query		int					false	"Page size"		default(50)
// @Success		200		{object}	VehicleListResponse
// @Failure		500		{object}	response.ErrorResponse
// @Router			/frota [get]
func (app *application) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	filter := store.VehicleFilter{OnlyUnbound: queryFlag(r, "vagos")}

	vehicles, total, err := app.services.Vehicles.List(r.Context(), filter, p.store())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeList(w, "Successfully retrieved vehicles", vehicles, p.meta(total))
}

// @Summary		Get vehicle
// @Tags			Frota
// @Produce		json
// @Param			id	path		int	true	"Vehicle ID"
// @Success		200	{object}	VehicleResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/frota/{id} [get]
func (app *application) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	v, err := app.services.Vehicles.Get(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Successfully retrieved vehicle", v)
}

// @Summary		Create vehicle
// @Description	Registers a vehicle. Trailer combinations require placa_carreta.
// @Tags			Frota
// @Accept			json
// @Produce		json
// @Success		201	{object}	VehicleResponse
// @Failure		400	{object}	response.ErrorResponse	"Invalid payload"
// @Failure		404	{object}	response.ErrorResponse	"Fixed driver not found"
// @Failure		409	{object}	response.ErrorResponse	"Plate already registered"
// @Router			/frota [post]
func (app *application) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	v, err := app.services.Vehicles.Create(r.Context(), payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Vehicle created", v)
}

func (app *application) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
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

	v, err := app.services.Vehicles.Update(r.Context(), id, payload)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Vehicle updated", v)
}

func (app *application) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.services.Vehicles.Delete(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	writeData[any](w, http.StatusOK, "Vehicle deleted", nil)
}
