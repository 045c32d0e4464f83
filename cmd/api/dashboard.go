package main

import (
	"net/http"

	"github.com/farxc/gestao-fretes/internal/response"
	"github.com/farxc/gestao-fretes/internal/store"
)

type KPIsResponse = response.APIResponse[store.KPIs]
type RouteStatsResponse = response.APIResponse[[]store.RouteStat]

// cacheHeader tells clients whether the aggregate came from the cache.
const cacheHeader = "X-Cache"

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(cacheHeader, "HIT")
		return
	}
	w.Header().Set(cacheHeader, "MISS")
}

// @Summary		Dashboard KPIs
// @Description	Revenue, costs, profit, margin and counts across all freights.
// @Tags			Dashboard
// @Produce		json
// @Success		200	{object}	KPIsResponse
// @Failure		500	{object}	response.ErrorResponse
// @Router			/dashboard/kpis [get]
func (app *application) handleGetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, hit, err := app.services.Dashboard.KPIs(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeData(w, http.StatusOK, "Successfully retrieved dashboard KPIs", kpis)
}

// @Summary		Route statistics
// @Description	Freight totals per origin and destination, most profitable first.
// @Tags			Dashboard
// @Produce		json
// @Success		200	{object}	RouteStatsResponse
// @Failure		500	{object}	response.ErrorResponse
// @Router			/dashboard/estatisticas-rotas [get]
func (app *application) handleGetRouteStats(w http.ResponseWriter, r *http.Request) {
	stats, hit, err := app.services.Dashboard.RouteStats(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeList(w, "Successfully retrieved route statistics", stats, nil)
}
