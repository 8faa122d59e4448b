package main

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Env     string `json:"env"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Pings the data store.
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	errorEnvelope
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.store.Ping(ctx); err != nil {
		app.storeUnavailableResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Env:     app.config.env,
		Version: version,
		Store:   app.config.storeDriver,
	})
}
