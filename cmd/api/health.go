package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/farxc/gestao-fretes/internal/cache"
	"github.com/farxc/gestao-fretes/internal/response"
)

const version = "0.1.0"

type FullHealth struct {
	UptimeSeconds  float64 `json:"uptime"`
	DB             string  `json:"db"`
	Cache          string  `json:"cache"`
	ResponseTimeMs int64   `json:"responseTimeMs"`
}

type FullHealthResponse = response.APIResponse[FullHealth]
type MessageResponse = response.APIResponse[any]

// @Summary		Health check
// @Description	returns the status of the service
// @Tags			Health
// @Produce		json
// @Success		200	{object}	map[string]string
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {

	data := map[string]string{
		"status":    "available",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// @Summary		Database health
// @Description	pings the database
// @Tags			Health
// @Produce		json
// @Success		200	{object}	MessageResponse
// @Failure		500	{object}	response.ErrorResponse
// @Router			/health/db [get]
func (app *application) dbHealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := app.store.Ping(ctx); err != nil {
		app.logger.Error(component, "database ping failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "database unavailable")
		return
	}
	writeData[any](w, http.StatusOK, "database connected", nil)
}

func (app *application) fullHealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	health := FullHealth{
		UptimeSeconds: time.Since(app.startedAt).Seconds(),
		DB:            "ok",
		Cache:         "ok",
	}

	dbErr := app.store.Ping(ctx)
	if dbErr != nil {
		health.DB = "error"
	}

	if err := app.services.Dashboard.CachePing(ctx); err != nil {
		health.Cache = "error"
		if errors.Is(err, cache.ErrDisabled) {
			health.Cache = "disabled"
		}
	}
	health.ResponseTimeMs = time.Since(start).Milliseconds()

	resp := &FullHealthResponse{Success: dbErr == nil, Data: health}
	status := http.StatusOK
	if dbErr != nil {
		app.logger.Error(component, "full health check: database ping failed: %v", dbErr)
		status = http.StatusInternalServerError
		resp.Message = "health check failed"
		resp.Error = "database unavailable"
	} else {
		resp.Message = "health check ok"
	}

	if err := writeJSON(w, status, resp); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
